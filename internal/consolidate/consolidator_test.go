package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksocr/internal/domain"
)

func successResult(kind domain.DocumentKind, fields map[string]string) *domain.DocumentResult {
	rec := domain.ParsedRecord{}
	for k, v := range fields {
		rec.Set(k, v)
	}
	return &domain.DocumentResult{Kind: kind, Success: true, Parsed: rec}
}

func TestMerge_IdentityOnly(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindRG: successResult(domain.KindRG, map[string]string{
			"nome_completo":   "JOAO CARLOS PEREIRA",
			"cpf":             "123.456.789-01",
			"data_nascimento": "15/03/1985",
		}),
	}

	p := Merge(results)

	assert.Equal(t, "JOAO CARLOS PEREIRA", *p.NomeCompleto)
	assert.Equal(t, "123.456.789-01", *p.CPF)
	assert.Equal(t, "15/03/1985", *p.DataNascimento)

	assert.Nil(t, p.Empresa)
	assert.Nil(t, p.CNPJ)
	assert.Nil(t, p.CEP)
	assert.Nil(t, p.Endereco)

	assert.Equal(t, 20, p.FieldsTotal)
	assert.Equal(t, 3, p.FieldsExtracted)
	assert.InDelta(t, 15.0, p.ConfidenceScore, 0.001)
	assert.Equal(t, []domain.DocumentKind{domain.KindRG}, p.ProcessedDocuments)
}

func TestMerge_CompanyAndAddressFromCNPJ(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindCNPJ: successResult(domain.KindCNPJ, map[string]string{
			"empresa":  "PADARIA CENTRAL LTDA",
			"cnpj":     "12.345.678/0001-95",
			"endereco": "RUA DAS FLORES",
			"numero":   "120",
			"cidade":   "SAO PAULO",
			"uf":       "SP",
		}),
		domain.KindAddress: successResult(domain.KindAddress, map[string]string{
			"cep":         "99999-999",
			"complemento": "Casa 2",
		}),
	}

	p := Merge(results)

	assert.Equal(t, "PADARIA CENTRAL LTDA", *p.Empresa)
	assert.Equal(t, "12.345.678/0001-95", *p.CNPJ)
	// The business registration supplied an address, so the proof-of-address
	// block is not spliced in.
	assert.Equal(t, "RUA DAS FLORES", *p.Endereco)
	assert.Nil(t, p.CEP)
	assert.Nil(t, p.Complemento)
}

func TestMerge_AddressFallbackWholeBlock(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindCNPJ: successResult(domain.KindCNPJ, map[string]string{
			"empresa": "PADARIA CENTRAL LTDA",
			"cnpj":    "12.345.678/0001-95",
		}),
		domain.KindAddress: successResult(domain.KindAddress, map[string]string{
			"cep":         "01310-100",
			"complemento": "Bloco B",
		}),
	}

	p := Merge(results)

	assert.Equal(t, "PADARIA CENTRAL LTDA", *p.Empresa)
	assert.Equal(t, "01310-100", *p.CEP)
	assert.Equal(t, "Bloco B", *p.Complemento)
	assert.ElementsMatch(t, []domain.DocumentKind{domain.KindCNPJ, domain.KindAddress}, p.ProcessedDocuments)
}

func TestMerge_EmpresaAliases(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindCNPJ: successResult(domain.KindCNPJ, map[string]string{
			"razao_social": "MERCADO BOM PRECO EIRELI",
		}),
	}

	p := Merge(results)
	require.NotNil(t, p.Empresa)
	assert.Equal(t, "MERCADO BOM PRECO EIRELI", *p.Empresa)
}

func TestMerge_FailedResultContributesNothing(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindRG: {
			Kind:    domain.KindRG,
			Success: false,
			Error:   "failed after 4 attempts: connection timeout",
		},
		domain.KindCNPJ: successResult(domain.KindCNPJ, map[string]string{
			"empresa": "PADARIA CENTRAL LTDA",
		}),
	}

	p := Merge(results)

	assert.Nil(t, p.NomeCompleto)
	assert.Equal(t, []domain.DocumentKind{domain.KindCNPJ}, p.ProcessedDocuments)
}

func TestMerge_FacadeMetadata(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindFacade: {
			Kind:    domain.KindFacade,
			Success: true,
			Facade: &domain.FacadeInfo{
				StoredForWebhook: true,
				ImageValidated:   true,
				FileSize:         204800,
				StorageKey:       "tasks/x/facade.jpg",
			},
		},
	}

	p := Merge(results)

	assert.True(t, p.FacadeStored)
	require.NotNil(t, p.FacadeInfo)
	assert.Equal(t, int64(204800), p.FacadeInfo.FileSize)
	// The photo contributes no extracted fields.
	assert.Zero(t, p.FieldsExtracted)
	assert.Zero(t, p.ConfidenceScore)
}

func TestMerge_NeedsReviewAndSentinels(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindRG: successResult(domain.KindRG, map[string]string{
			"nome_completo":   "JOAO CARLOS PEREIRA",
			"cpf":             domain.SentinelNeedsReview,
			"data_nascimento": domain.SentinelIllegible,
		}),
	}

	p := Merge(results)

	assert.Equal(t, []string{"cpf"}, p.NeedsReview)
	// Sentinel values are present but not counted as extracted.
	assert.Equal(t, 1, p.FieldsExtracted)
}

func TestMerge_EmptyInput(t *testing.T) {
	p := Merge(map[domain.DocumentKind]*domain.DocumentResult{})

	assert.Equal(t, 20, p.FieldsTotal)
	assert.Zero(t, p.FieldsExtracted)
	assert.Zero(t, p.ConfidenceScore)
	assert.Empty(t, p.NeedsReview)
	assert.Empty(t, p.ProcessedDocuments)
	for _, f := range p.DataFields() {
		assert.Nil(t, *f.Value, f.Name)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	results := map[domain.DocumentKind]*domain.DocumentResult{
		domain.KindRG: successResult(domain.KindRG, map[string]string{
			"nome_completo": "MARIA DOS SANTOS",
			"cpf":           "987.654.321-00",
		}),
		domain.KindCNPJ: successResult(domain.KindCNPJ, map[string]string{
			"empresa": "MERCADO BOM PRECO EIRELI",
			"cnpj":    "11.222.333/0001-81",
		}),
		domain.KindAddress: successResult(domain.KindAddress, map[string]string{
			"cep": "70040-010",
		}),
	}

	first := Merge(results)
	second := Merge(results)

	assert.Equal(t, first, second)
}

func TestMerge_ProfileDoesNotAliasInputs(t *testing.T) {
	rg := successResult(domain.KindRG, map[string]string{"nome_completo": "MARIA DOS SANTOS"})
	p := Merge(map[domain.DocumentKind]*domain.DocumentResult{domain.KindRG: rg})

	rg.Parsed.Set("nome_completo", "CHANGED")
	assert.Equal(t, "MARIA DOS SANTOS", *p.NomeCompleto)
}
