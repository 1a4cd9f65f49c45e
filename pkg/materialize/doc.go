// Package materialize writes the new state of a bundle into a destination
// and returns the fingerprint of every file it produced.
//
// A bundle is a list of zip archives, extracted below the destination, and
// raw files, each copied to a relative or absolute destination path. Files
// can be realized: their content runs through a template.Engine before it
// is fingerprinted and written.
//
// The same code path computes the prospective state of a bundle without
// writing anything, so fingerprints of a dry run and a committed run are
// always identical.
package materialize
