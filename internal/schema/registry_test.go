package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walksocr/internal/domain"
)

func TestLookup_Defaults(t *testing.T) {
	r := NewRegistry()

	rg, err := r.Lookup(domain.KindRG)
	require.NoError(t, err)
	assert.Equal(t, []string{"nome_completo", "data_nascimento", "cpf"}, rg.EssentialFields)
	assert.Equal(t, 2, rg.MinRequired)

	cnpj, err := r.Lookup(domain.KindCNPJ)
	require.NoError(t, err)
	assert.Equal(t, []string{"empresa", "cnpj", "nome_comprovante"}, cnpj.EssentialFields)
	assert.Equal(t, 2, cnpj.MinRequired)

	addr, err := r.Lookup(domain.KindAddress)
	require.NoError(t, err)
	assert.Equal(t, []string{"cep", "complemento"}, addr.EssentialFields)
	assert.Equal(t, 1, addr.MinRequired)
}

func TestLookup_FacadeHasNoEssentialFields(t *testing.T) {
	r := NewRegistry()

	facade, err := r.Lookup(domain.KindFacade)
	require.NoError(t, err)
	assert.Empty(t, facade.EssentialFields)
	assert.Zero(t, facade.MinRequired)
}

func TestLookup_UnknownKind(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup(domain.DocumentKind("passport"))
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestNewRegistryWithOverrides(t *testing.T) {
	r, err := NewRegistryWithOverrides(map[domain.DocumentKind]int{
		domain.KindRG:      3,
		domain.KindAddress: 2,
	})
	require.NoError(t, err)

	rg, err := r.Lookup(domain.KindRG)
	require.NoError(t, err)
	assert.Equal(t, 3, rg.MinRequired)

	addr, err := r.Lookup(domain.KindAddress)
	require.NoError(t, err)
	assert.Equal(t, 2, addr.MinRequired)

	// Untouched kinds keep their defaults.
	cnpj, err := r.Lookup(domain.KindCNPJ)
	require.NoError(t, err)
	assert.Equal(t, 2, cnpj.MinRequired)
}

func TestNewRegistryWithOverrides_OutOfRange(t *testing.T) {
	_, err := NewRegistryWithOverrides(map[domain.DocumentKind]int{domain.KindRG: 4})
	assert.Error(t, err)

	_, err = NewRegistryWithOverrides(map[domain.DocumentKind]int{domain.KindRG: -1})
	assert.Error(t, err)
}

func TestNewRegistryWithOverrides_UnknownKind(t *testing.T) {
	_, err := NewRegistryWithOverrides(map[domain.DocumentKind]int{domain.DocumentKind("passport"): 1})
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}
