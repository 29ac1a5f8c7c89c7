package translit

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is wrapped by every schema validation failure.
var ErrInvalidSchema = errors.New("invalid schema")

// UnknownSchemaError is returned when a schema name is not registered.
type UnknownSchemaError struct {
	Name string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("unknown schema %q", e.Name)
}

// UnmappedCharacterError reports a letter that has no base mapping entry.
type UnmappedCharacterError struct {
	Schema string
	Char   rune
}

func (e *UnmappedCharacterError) Error() string {
	return fmt.Sprintf("schema %q: no mapping for %q", e.Schema, e.Char)
}
