package schema

import "fmt"

// CompilationError indicates the schema definition itself is malformed.
type CompilationError struct {
	Field  string
	Reason string
}

func (e *CompilationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema compilation failed: %s", e.Reason)
	}
	return fmt.Sprintf("schema compilation failed for field %q: %s", e.Field, e.Reason)
}

// ValidationError indicates extracted data does not conform to the compiled schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("schema validation failed for field %q: %s", e.Field, e.Reason)
}
