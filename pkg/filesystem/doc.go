// Package filesystem provides the afero filesystems stowaway runs on.
//
// Production code uses the OS filesystem, tests use an in-memory one and
// read-only commands wrap either so that a bug cannot modify a destination.
package filesystem
