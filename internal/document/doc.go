// Package document defines the format-agnostic tree that every input file is
// parsed into, and the path grammar used to address locations inside it.
//
// A Document is built from exactly three node kinds: ordered mappings,
// sequences and scalars. Format adapters produce it, the extraction engine
// walks and rewrites it, and the same adapters turn the rewritten tree back
// into text.
//
// Paths are strings of bracketed segments (`[db][hosts][0]`) with no root
// token. The same path reached in two environment documents is assumed to
// denote the same logical parameter.
package document
