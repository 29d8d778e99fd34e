package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksocr/internal/domain"
	"walksocr/internal/schema"
)

func newTestParser() *Parser {
	return NewParser(schema.NewRegistry())
}

func TestParse_DirectJSON(t *testing.T) {
	raw := `{"empresa": "ACME LTDA", "cnpj": "11.222.333/0001-81"}`

	rec, strategy, err := newTestParser().Parse(raw, domain.KindCNPJ)
	require.NoError(t, err)

	assert.Equal(t, StrategyDirectJSON, strategy)
	assert.Equal(t, "ACME LTDA", rec.Get("empresa"))
	assert.Equal(t, "11.222.333/0001-81", rec.Get("cnpj"))
	// Missing essential fields are present but null.
	v, ok := rec["nome_comprovante"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestParse_DirectJSON_RoundTrip(t *testing.T) {
	raw := `{"nome_completo": "MARIA  DOS SANTOS", "data_nascimento": "01/02/1990", "cpf": "null"}`

	rec, strategy, err := newTestParser().Parse(raw, domain.KindRG)
	require.NoError(t, err)

	assert.Equal(t, StrategyDirectJSON, strategy)
	// Inner whitespace collapses, "null" normalizes to null.
	assert.Equal(t, "MARIA DOS SANTOS", rec.Get("nome_completo"))
	assert.Equal(t, "01/02/1990", rec.Get("data_nascimento"))
	assert.Nil(t, rec["cpf"])
}

func TestParse_EmbeddedJSON_FencedBlock(t *testing.T) {
	raw := "Here is the extracted data:\n```json\n{\"cep\": \"70040-010\", \"complemento\": \"Quadra 5\"}\n```\nLet me know if you need anything else."

	rec, strategy, err := newTestParser().Parse(raw, domain.KindAddress)
	require.NoError(t, err)

	assert.Equal(t, StrategyEmbeddedJSON, strategy)
	assert.Equal(t, "70040-010", rec.Get("cep"))
	assert.Equal(t, "Quadra 5", rec.Get("complemento"))
}

func TestParse_EmbeddedJSON_BareBraces(t *testing.T) {
	raw := `The document contains {"empresa": "PADARIA CENTRAL LTDA", "cnpj": "12.345.678/0001-95"} as requested.`

	rec, strategy, err := newTestParser().Parse(raw, domain.KindCNPJ)
	require.NoError(t, err)

	assert.Equal(t, StrategyEmbeddedJSON, strategy)
	assert.Equal(t, "PADARIA CENTRAL LTDA", rec.Get("empresa"))
}

func TestParse_PatternFallback_Address(t *testing.T) {
	raw := "CEP: 01310-100, Bloco B"

	rec, strategy, err := newTestParser().Parse(raw, domain.KindAddress)
	require.NoError(t, err)

	assert.Equal(t, StrategyPatterns, strategy)
	assert.Equal(t, "01310-100", rec.Get("cep"))
	assert.Equal(t, "Bloco B", rec.Get("complemento"))
}

func TestParse_PatternFallback_RG(t *testing.T) {
	raw := "NOME: JOAO CARLOS PEREIRA\nNASCIMENTO: 15/03/1985\nCPF: 123.456.789-01"

	rec, strategy, err := newTestParser().Parse(raw, domain.KindRG)
	require.NoError(t, err)

	assert.Equal(t, StrategyPatterns, strategy)
	assert.Equal(t, "JOAO CARLOS PEREIRA", rec.Get("nome_completo"))
	assert.Equal(t, "15/03/1985", rec.Get("data_nascimento"))
	assert.Equal(t, "123.456.789-01", rec.Get("cpf"))
}

func TestParse_GarbageYieldsNullFilledRecord(t *testing.T) {
	rec, strategy, err := newTestParser().Parse("??? ---", domain.KindRG)
	require.NoError(t, err)

	assert.Equal(t, StrategyPatterns, strategy)
	for _, field := range []string{"nome_completo", "data_nascimento", "cpf"} {
		v, ok := rec[field]
		assert.True(t, ok, field)
		assert.Nil(t, v, field)
	}
}

func TestParse_UnknownKind(t *testing.T) {
	_, _, err := newTestParser().Parse("{}", domain.DocumentKind("passport"))
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestParse_MalformedEmbeddedJSONFallsThrough(t *testing.T) {
	raw := "```json\n{\"cep\": broken\n```\nCEP: 70040-010"

	rec, strategy, err := newTestParser().Parse(raw, domain.KindAddress)
	require.NoError(t, err)

	assert.Equal(t, StrategyPatterns, strategy)
	assert.Equal(t, "70040-010", rec.Get("cep"))
}

func TestDecodeObject_ScalarHandling(t *testing.T) {
	rec, ok := decodeObject(`{"a": "x", "b": 12345678901, "c": true, "d": null, "e": [1,2], "f": {"g": 1}}`)
	require.True(t, ok)

	assert.Equal(t, "x", rec.Get("a"))
	assert.Equal(t, "12345678901", rec.Get("b"))
	assert.Equal(t, "true", rec.Get("c"))
	assert.Nil(t, rec["d"])
	// Nested structures are dropped.
	_, hasE := rec["e"]
	assert.False(t, hasE)
	_, hasF := rec["f"]
	assert.False(t, hasF)
}

func TestNormalizeValues(t *testing.T) {
	rec := domain.ParsedRecord{}
	rec.Set("a", "  spaced   out  ")
	rec.Set("b", "NULL")
	rec.Set("c", "None")
	rec.Set("d", "")

	normalizeValues(rec)

	assert.Equal(t, "spaced out", rec.Get("a"))
	assert.Nil(t, rec["b"])
	assert.Nil(t, rec["c"])
	assert.Nil(t, rec["d"])
}
