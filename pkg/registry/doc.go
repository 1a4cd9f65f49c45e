// Package registry provides a generic, thread-safe name-to-item registry.
package registry
