// Package format holds the static registry of supported input formats and
// their adapters. An adapter parses one file per environment into the
// document model and encodes the extraction template back into the format's
// text.
//
// Two encoding strategies exist. Structural formats (json, yaml, dotenv)
// serialize the rewritten tree with the format's writer and then repair the
// quoting around placeholders whose parameter is not a string. HCL formats
// (tf, tfvars) cannot be written back reliably, so their template is the
// default source text with literal values replaced by references.
package format
