package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"walksocr/internal/domain"
	"walksocr/internal/schema"
)

func cnpjSchema() schema.DocumentSchema {
	return schema.DocumentSchema{
		Kind:            domain.KindCNPJ,
		EssentialFields: []string{"empresa", "cnpj", "nome_comprovante"},
		MinRequired:     2,
	}
}

func TestEvaluate_TwoOfThreeFound(t *testing.T) {
	rec := domain.ParsedRecord{}
	rec.Set("empresa", "ACME LTDA")
	rec.Set("cnpj", "11.222.333/0001-81")
	rec["nome_comprovante"] = nil

	m := Evaluate(rec, cnpjSchema())

	assert.Equal(t, 2, m.ValidFields)
	assert.Equal(t, 3, m.TotalRequired)
	assert.InDelta(t, 66.7, m.Score, 0.05)
	assert.True(t, m.Accepted)
	assert.Equal(t, []string{"empresa", "cnpj"}, m.FoundFields)
	assert.Equal(t, []string{"nome_comprovante"}, m.MissingFields)
}

func TestEvaluate_BelowMinimumRejected(t *testing.T) {
	rec := domain.ParsedRecord{}
	rec.Set("empresa", "ACME LTDA")

	m := Evaluate(rec, cnpjSchema())

	assert.Equal(t, 1, m.ValidFields)
	assert.False(t, m.Accepted)
}

func TestEvaluate_SentinelsDoNotCount(t *testing.T) {
	rec := domain.ParsedRecord{}
	rec.Set("empresa", domain.SentinelIllegible)
	rec.Set("cnpj", domain.SentinelNeedsReview)
	rec.Set("nome_comprovante", "null")

	m := Evaluate(rec, cnpjSchema())

	assert.Zero(t, m.ValidFields)
	assert.Zero(t, m.Score)
	assert.False(t, m.Accepted)
	assert.Len(t, m.MissingFields, 3)
}

func TestEvaluate_WhitespaceOnlyIsMissing(t *testing.T) {
	rec := domain.ParsedRecord{}
	rec.Set("empresa", "   ")
	rec.Set("cnpj", "11.222.333/0001-81")

	m := Evaluate(rec, cnpjSchema())

	assert.Equal(t, 1, m.ValidFields)
	assert.Equal(t, []string{"cnpj"}, m.FoundFields)
}

func TestEvaluate_EmptySchemaTriviallyAccepted(t *testing.T) {
	m := Evaluate(domain.ParsedRecord{}, schema.DocumentSchema{Kind: domain.KindFacade})

	assert.Equal(t, float64(100), m.Score)
	assert.Zero(t, m.TotalRequired)
	assert.True(t, m.Accepted)
	assert.Empty(t, m.FoundFields)
	assert.Empty(t, m.MissingFields)
}

func TestEvaluate_AcceptedIffFoundMeetsMinimum(t *testing.T) {
	s := cnpjSchema()
	for _, tc := range []struct {
		found    int
		accepted bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{3, true},
	} {
		rec := domain.ParsedRecord{}
		for i := 0; i < tc.found; i++ {
			rec.Set(s.EssentialFields[i], "value")
		}
		m := Evaluate(rec, s)
		assert.Equal(t, tc.accepted, m.Accepted, "found=%d", tc.found)
		assert.InDelta(t, 100*float64(tc.found)/3, m.Score, 0.001)
	}
}
