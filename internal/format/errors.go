package format

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is matched by every *UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError names a format or file that has no adapter.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("no processor found for file type %q (supported: %v)", e.Name, Names())
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DecodeError reports an input that is not valid for its declared format.
type DecodeError struct {
	Filename string
	Format   string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("attempt to decode %s as %s failed: %v", e.Filename, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrTemplateShape is returned when an encoder is given a template that does
// not match the document it parsed.
var ErrTemplateShape = errors.New("template does not match the parsed document")
