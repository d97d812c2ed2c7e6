// Package schema declares structural response schemas and validates untyped
// JSON payloads against them.
//
// A schema is derived once from a Go struct type via huma's schema registry
// and then used to check decoded payloads (maps, slices, primitives) before
// they are allowed to become typed values. Validation is pure: no I/O, no
// logging, and the untyped payload is never returned to callers.
package schema

import (
	"reflect"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// Violation names one offending path in a payload.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Schema is a compiled structural schema for one declared response shape.
type Schema struct {
	name     string
	registry huma.Registry
	schema   *huma.Schema

	mu  sync.Mutex
	pb  *huma.PathBuffer
	res *huma.ValidateResult
}

var (
	cacheMu sync.RWMutex
	cache   = map[reflect.Type]*Schema{}
)

// For compiles (and caches) the schema for T under the given name.
// Unknown fields in payloads are tolerated, matching how the upstream API
// evolves: new fields must never break deployed clients.
func For[T any](name string) *Schema {
	return compile[T](name, false)
}

// ForStrict compiles a schema that additionally rejects unknown fields.
func ForStrict[T any](name string) *Schema {
	return compile[T](name, true)
}

func compile[T any](name string, strict bool) *Schema {
	t := reflect.TypeFor[T]()

	cacheMu.RLock()
	s, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return s
	}

	registry := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	compiled := registry.Schema(t, true, name)
	if !strict {
		relax(compiled, registry)
	}

	s = &Schema{
		name:     name,
		registry: registry,
		schema:   compiled,
		pb:       huma.NewPathBuffer([]byte(""), 0),
		res:      &huma.ValidateResult{},
	}

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()
	return s
}

// Name returns the declared resource name, used in error messages.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a decoded payload against the schema and returns the
// violating paths, or nil when the payload conforms. Numbers are never
// coerced from numeric strings and booleans never from 0/1; nullable
// fields accept JSON null in addition to their declared type.
func (s *Schema) Validate(payload any) []Violation {
	// huma's validator reuses its buffers, so serialize access to them.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pb.Reset()
	s.res.Reset()
	huma.Validate(s.registry, s.schema, s.pb, huma.ModeReadFromServer, payload, s.res)

	if len(s.res.Errors) == 0 {
		return nil
	}

	violations := make([]Violation, 0, len(s.res.Errors))
	for _, err := range s.res.Errors {
		var detail *huma.ErrorDetail
		if asErrorDetail(err, &detail) {
			violations = append(violations, Violation{
				Path:    detail.Location,
				Message: detail.Message,
			})
			continue
		}
		violations = append(violations, Violation{Message: err.Error()})
	}
	return violations
}

func asErrorDetail(err error, target **huma.ErrorDetail) bool {
	d, ok := err.(*huma.ErrorDetail)
	if ok {
		*target = d
	}
	return ok
}

// relax clears additionalProperties restrictions on the schema and every
// schema it references, so unknown upstream fields pass validation.
func relax(s *huma.Schema, registry huma.Registry) {
	seen := map[*huma.Schema]bool{}
	relaxSchema(s, seen)
	for _, ref := range registry.Map() {
		relaxSchema(ref, seen)
	}
}

func relaxSchema(s *huma.Schema, seen map[*huma.Schema]bool) {
	if s == nil || seen[s] {
		return
	}
	seen[s] = true

	if s.Type == huma.TypeObject {
		s.AdditionalProperties = nil
	}
	for _, p := range s.Properties {
		relaxSchema(p, seen)
	}
	relaxSchema(s.Items, seen)
	for _, sub := range s.OneOf {
		relaxSchema(sub, seen)
	}
	for _, sub := range s.AnyOf {
		relaxSchema(sub, seen)
	}
	for _, sub := range s.AllOf {
		relaxSchema(sub, seen)
	}
	relaxSchema(s.Not, seen)
}
