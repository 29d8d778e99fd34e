// Package consolidate merges per-document extraction results into one
// customer profile.
package consolidate

import (
	"strings"

	"walksocr/internal/domain"
)

// Merge builds a ConsolidatedProfile from the terminal results of one task.
// It only reads its inputs and always rebuilds the profile from scratch, so
// re-running it on the same result set yields an identical profile.
//
// A kind missing from results means the document was never processed: its
// fields stay null and it is excluded from ProcessedDocuments. A present but
// failed result contributes nothing either, except the attempt record.
func Merge(results map[domain.DocumentKind]*domain.DocumentResult) *domain.ConsolidatedProfile {
	profile := &domain.ConsolidatedProfile{
		NeedsReview:        []string{},
		ProcessedDocuments: []domain.DocumentKind{},
	}

	if r := successful(results, domain.KindCNPJ); r != nil {
		applyCompany(profile, r.Parsed)
		applyAddress(profile, r.Parsed)
	}

	// Address fields fall back to the proof-of-address document as a whole
	// block. No field-by-field splicing between the two sources.
	if profile.Endereco == nil {
		if r := successful(results, domain.KindAddress); r != nil {
			applyAddress(profile, r.Parsed)
		}
	}

	if r := successful(results, domain.KindRG); r != nil {
		applyOwner(profile, r.Parsed)
	}

	if r := successful(results, domain.KindFacade); r != nil && r.Facade != nil {
		profile.FacadeStored = r.Facade.StoredForWebhook
		info := *r.Facade
		profile.FacadeInfo = &info
	}

	// Stable iteration order keeps the profile deterministic.
	for _, kind := range domain.AllKinds {
		if r, ok := results[kind]; ok && r != nil && r.Success {
			profile.ProcessedDocuments = append(profile.ProcessedDocuments, kind)
		}
	}

	score(profile)
	return profile
}

func successful(results map[domain.DocumentKind]*domain.DocumentResult, kind domain.DocumentKind) *domain.DocumentResult {
	r, ok := results[kind]
	if !ok || r == nil || !r.Success {
		return nil
	}
	return r
}

func applyCompany(p *domain.ConsolidatedProfile, rec domain.ParsedRecord) {
	p.Empresa = firstOf(rec, "empresa", "razao_social", "nome_fantasia")
	p.CNPJ = clone(rec, "cnpj")
	p.InscricaoEstadual = clone(rec, "inscricao_estadual")
	p.Email = clone(rec, "email")
	p.Telefone = clone(rec, "telefone")
	p.Celular = clone(rec, "celular")
}

func applyAddress(p *domain.ConsolidatedProfile, rec domain.ParsedRecord) {
	p.CEP = clone(rec, "cep")
	p.Endereco = firstOf(rec, "endereco", "logradouro")
	p.Numero = clone(rec, "numero")
	p.Complemento = clone(rec, "complemento")
	p.Bairro = clone(rec, "bairro")
	p.Cidade = clone(rec, "cidade")
	p.UF = firstOf(rec, "uf", "estado")
}

func applyOwner(p *domain.ConsolidatedProfile, rec domain.ParsedRecord) {
	p.NomeCompleto = clone(rec, "nome_completo")
	p.CPF = clone(rec, "cpf")
	p.DataNascimento = clone(rec, "data_nascimento")
	p.EnderecoProprietario = firstOf(rec, "endereco_proprietario", "endereco")
}

// score fills the profile's metadata fields. Sentinel values (anything in
// square brackets) do not count as extracted, and values carrying the review
// marker are listed in NeedsReview.
func score(p *domain.ConsolidatedProfile) {
	fields := p.DataFields()
	p.FieldsTotal = len(fields)
	p.FieldsExtracted = 0

	for _, f := range fields {
		v := *f.Value
		if v == nil || *v == "" {
			continue
		}
		if strings.Contains(*v, domain.SentinelNeedsReview) {
			p.NeedsReview = append(p.NeedsReview, f.Name)
		}
		if strings.HasPrefix(*v, "[") {
			continue
		}
		p.FieldsExtracted++
	}

	if p.FieldsTotal > 0 {
		p.ConfidenceScore = 100 * float64(p.FieldsExtracted) / float64(p.FieldsTotal)
	}
}

// clone copies a record value so the profile never aliases its inputs.
func clone(rec domain.ParsedRecord, field string) *string {
	if v := rec.Get(field); v != "" {
		return &v
	}
	return nil
}

func firstOf(rec domain.ParsedRecord, fields ...string) *string {
	for _, f := range fields {
		if v := clone(rec, f); v != nil {
			return v
		}
	}
	return nil
}
