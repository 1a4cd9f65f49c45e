// Package pathkey normalizes filesystem paths into canonical map keys.
//
// Relative keys are relative to a deployment's destination directory and
// always use "/" as separator. Absolute keys keep their root marker, either
// "/" or an upper-cased drive letter such as "C:". An absolute path that
// happens to live under the destination is never rewritten relative, so
// relative and absolute keys form two distinct namespaces.
//
// RootSplitter hides the difference between single-root systems and
// systems with drive letters from the rest of the engine.
package pathkey
