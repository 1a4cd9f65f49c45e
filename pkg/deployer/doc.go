// Package deployer deploys a bundle onto a destination directory.
//
// The first deployment onto a destination writes every file. Later
// deployments compare three states of every path: the original state
// recorded by the previous deployment, the current state found on disk and
// the new state the bundle produces. Local edits are kept when the new
// bundle did not touch the file, and backed up before anything overwrites
// or deletes them. See package reconcile for the decision table.
//
// Every operation accepts a dry-run flag. A dry run performs the same
// analysis, computes the same fingerprints and fills the same report, but
// writes nothing to the destination or the metadata store.
package deployer
