// Package filestate holds the fingerprint model of a deployment: which
// files exist under (or outside) a destination and what their content is.
//
// A Map is the snapshot persisted after each deployment. Rescan compares
// such a snapshot with the live filesystem and partitions every path into
// unchanged, added, changed, deleted or ignored. A rescan that could not
// read the whole tree is flagged as failed rather than returned partially.
package filestate
