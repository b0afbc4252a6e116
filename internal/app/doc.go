// Package app runs extractions end to end: it reads the environment files
// through an afero.Fs, drives the format adapter and the engine, and writes
// the template and catalog artifacts. It is decoupled from any specific
// entrypoint like the CLI.
package app
