// Package schema defines the essential-field schemas used to judge whether a
// document extraction is acceptable.
package schema

import (
	"fmt"

	"walksocr/internal/domain"
)

// DocumentSchema describes the fields a document kind must yield.
type DocumentSchema struct {
	Kind domain.DocumentKind
	// EssentialFields is the ordered list of fields the extraction prompt
	// asks for. Order matters for reporting, not for scoring.
	EssentialFields []string
	// MinRequired is how many essential fields must be non-null for the
	// record to be acceptable. Always 0 <= MinRequired <= len(EssentialFields).
	MinRequired int
}

// Registry resolves the schema for a document kind. Static, read-only data;
// safe for concurrent use.
type Registry struct {
	schemas map[domain.DocumentKind]DocumentSchema
}

// NewRegistry builds the default registry. The facade kind is intentionally
// present with zero essential fields: it is stored, never OCRed, and always
// evaluates as trivially acceptable.
func NewRegistry() *Registry {
	return &Registry{schemas: map[domain.DocumentKind]DocumentSchema{
		domain.KindRG: {
			Kind:            domain.KindRG,
			EssentialFields: []string{"nome_completo", "data_nascimento", "cpf"},
			MinRequired:     2,
		},
		domain.KindCNPJ: {
			Kind:            domain.KindCNPJ,
			EssentialFields: []string{"empresa", "cnpj", "nome_comprovante"},
			MinRequired:     2,
		},
		domain.KindAddress: {
			Kind:            domain.KindAddress,
			EssentialFields: []string{"cep", "complemento"},
			MinRequired:     1,
		},
		domain.KindFacade: {
			Kind:            domain.KindFacade,
			EssentialFields: nil,
			MinRequired:     0,
		},
	}}
}

// NewRegistryWithOverrides builds a registry applying configured min-required
// overrides. Overrides outside [0, len(EssentialFields)] are rejected.
func NewRegistryWithOverrides(minRequired map[domain.DocumentKind]int) (*Registry, error) {
	r := NewRegistry()
	for kind, n := range minRequired {
		s, ok := r.schemas[kind]
		if !ok {
			return nil, fmt.Errorf("min-required override for %q: %w", kind, domain.ErrSchemaNotFound)
		}
		if n < 0 || n > len(s.EssentialFields) {
			return nil, fmt.Errorf("min-required override for %q must be between 0 and %d, got %d",
				kind, len(s.EssentialFields), n)
		}
		s.MinRequired = n
		r.schemas[kind] = s
	}
	return r, nil
}

// Lookup returns the schema for kind, or domain.ErrSchemaNotFound.
func (r *Registry) Lookup(kind domain.DocumentKind) (DocumentSchema, error) {
	s, ok := r.schemas[kind]
	if !ok {
		return DocumentSchema{}, fmt.Errorf("%w: %q", domain.ErrSchemaNotFound, kind)
	}
	return s, nil
}
