package dataset

import "fmt"

// SourceNotFoundError reports a missing input file. It is fatal: the run
// aborts with no partial output.
type SourceNotFoundError struct {
	File string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %s: %v", e.File, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// SchemaError reports a required column that is absent or a value that does
// not parse as its declared type. It is fatal and names the offending file
// and column; Row is 0 when the problem is the header itself.
type SchemaError struct {
	File   string
	Column string
	Row    int
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema %s: column %q row %d: %v", e.File, e.Column, e.Row, e.Err)
	}
	return fmt.Sprintf("schema %s: column %q: %v", e.File, e.Column, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
