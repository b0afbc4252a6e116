// Package engine is the extraction layer of the application. It walks the
// parsed documents of every environment, turns literal scalars into
// parameters, merges the per-environment values into one catalog and leaves
// placeholder references behind in the default environment's document, which
// becomes the template body.
//
// When a catalog from an earlier run is supplied as hints the engine stops
// inventing parameters: only paths already present in the hints are
// replaced, and they keep their recorded names and types.
//
// Every call to Extract starts from fresh state; an Engine only carries
// immutable configuration and can be reused.
package engine
