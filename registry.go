package translit

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

//go:embed schemas/*.json
var bundled embed.FS

// Registry resolves schemas by name. It is read-only once built.
type Registry struct {
	schemas map[string]*Schema
	sources map[string][]byte
}

// NewRegistry indexes schemas by lowercase name.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{
		schemas: make(map[string]*Schema, len(schemas)),
		sources: make(map[string][]byte, len(schemas)),
	}
	for _, s := range schemas {
		data, err := json.Marshal(s.def)
		if err != nil {
			return nil, fmt.Errorf("encoding schema %q: %w", s.Name(), err)
		}
		if err := r.add(s, data); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// LoadRegistry parses every schema file in fsys matching pattern.
func LoadRegistry(fsys fs.FS, pattern string) (*Registry, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing schema files: %w", err)
	}

	r := &Registry{
		schemas: make(map[string]*Schema, len(files)),
		sources: make(map[string][]byte, len(files)),
	}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}

		s, err := ParseSchema(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}

		if err := r.add(s, data); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	return r, nil
}

func (r *Registry) add(s *Schema, source []byte) error {
	key := strings.ToLower(s.Name())
	if _, dup := r.schemas[key]; dup {
		return fmt.Errorf("%w: duplicate schema name %q", ErrInvalidSchema, s.Name())
	}

	r.schemas[key] = s
	r.sources[key] = source

	return nil
}

// Lookup returns the schema registered under name, ignoring case.
func (r *Registry) Lookup(name string) (*Schema, error) {
	s, ok := r.schemas[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownSchemaError{Name: name}
	}

	return s, nil
}

// Names lists the registered schema names in sorted order.
func (r *Registry) Names() []string {
	names := lo.Map(lo.Values(r.schemas), func(s *Schema, _ int) string {
		return s.Name()
	})
	slices.Sort(names)

	return names
}

// Source returns the definition of the named schema as it was loaded.
func (r *Registry) Source(name string) ([]byte, error) {
	data, ok := r.sources[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownSchemaError{Name: name}
	}

	return slices.Clone(data), nil
}

// Translate transliterates text with the named schema.
func (r *Registry) Translate(text, name string) (string, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return "", err
	}

	return Translate(s, text), nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := LoadRegistry(bundled, "schemas/*.json")
	if err != nil {
		panic(fmt.Sprintf("translit: bundled schemas: %v", err))
	}

	return r
})

// Default returns the registry of the bundled schemas. It is built on first
// use.
func Default() *Registry {
	return defaultRegistry()
}

func Lookup(name string) (*Schema, error) {
	return Default().Lookup(name)
}

func Names() []string {
	return Default().Names()
}

// ParseBySchemaName transliterates text with the bundled schema called
// schemaName.
func ParseBySchemaName(text, schemaName string) (string, error) {
	return Default().Translate(text, schemaName)
}
