// Package types defines the data exchanged between the deployment engine,
// the commands and the renderers: deployment records, the differences
// report a deployment accumulates, and destination status.
package types
