// Package reconcile implements the three-way merge between the original
// file state of a deployment, the live state found by a rescan, and the
// state about to be deployed.
//
// The rules follow rpm's handling of config files:
//
//	ORIGINAL  CURRENT  NEW   action
//	X         X        X     install new over current
//	X         X        Y     install new over current
//	X         Y        X     leave current as-is
//	X         Y        Y     install new over current
//	X         Y        Z     back up current, install new
//	none      Y        Z     back up current, install new
//	X         none     Z     install new
//	X/none    Y        none  back up current, delete it
//
// A file is left alone only when the local edit started from exactly what
// the new deployment would install anyway. It is then recorded with the
// original fingerprint, not the measured one, so the edit keeps counting
// as a change on the next deployment.
package reconcile
