package extract

import (
	"regexp"
	"strings"

	"walksocr/internal/domain"
)

// fieldRule binds an ordered set of patterns to a target field. Patterns are
// tried in order; the first captured value passing accept wins. Multi rules
// instead aggregate every match into one comma-joined value.
type fieldRule struct {
	field    string
	patterns []*regexp.Regexp
	accept   func(string) bool
	multi    bool
	// copyFrom names a field whose value fills this one when no pattern
	// matched (e.g. nome_comprovante defaults to empresa).
	copyFrom string
}

// extractWithRules runs a kind's rule set over raw text. It tolerates noisy
// and partial matches and never fails; unmatched fields are simply absent.
func extractWithRules(text string, rules []fieldRule) domain.ParsedRecord {
	rec := make(domain.ParsedRecord, len(rules))
	for _, rule := range rules {
		if rule.multi {
			if v := collectMatches(text, rule); v != "" {
				rec.Set(rule.field, v)
			}
			continue
		}
		if v := firstMatch(text, rule); v != "" {
			rec.Set(rule.field, v)
		} else if rule.copyFrom != "" {
			if src := rec.Get(rule.copyFrom); src != "" {
				rec.Set(rule.field, src)
			}
		}
	}
	return rec
}

func firstMatch(text string, rule fieldRule) string {
	for _, re := range rule.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if v == "" {
			continue
		}
		if rule.accept != nil && !rule.accept(v) {
			continue
		}
		return v
	}
	return ""
}

// collectMatches gathers every acceptable capture across all patterns,
// deduplicated, joined with ", ".
func collectMatches(text string, rule fieldRule) string {
	var parts []string
	seen := make(map[string]bool)
	for _, re := range rule.patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v := strings.TrimSpace(m[1])
			if v == "" || seen[v] {
				continue
			}
			if rule.accept != nil && !rule.accept(v) {
				continue
			}
			seen[v] = true
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// digitCount accepts values whose digits-only form has exactly n digits.
// Used for CPF (11), CNPJ (14) and CEP (8) length checks.
func digitCount(n int) func(string) bool {
	return func(v string) bool {
		count := 0
		for _, r := range v {
			if r >= '0' && r <= '9' {
				count++
			}
		}
		return count == n
	}
}

func minWords(n int) func(string) bool {
	return func(v string) bool { return len(strings.Fields(v)) >= n }
}

func minLen(n int) func(string) bool {
	return func(v string) bool { return len(v) >= n }
}

func maxLen(n int) func(string) bool {
	return func(v string) bool { return len(v) <= n }
}

var (
	rgRules = []fieldRule{
		{
			field: "nome_completo",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)nome completo[:\s]+([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ ]{10,})`),
				regexp.MustCompile(`(?i)nome[:\s]+([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ ]{10,})`),
				regexp.MustCompile(`(?im)^([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ ]{15,})$`),
			},
			accept: minWords(2),
		},
		{
			field: "data_nascimento",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)nascimento[:\s]+(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})`),
				regexp.MustCompile(`(?i)data[:\s]+(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})`),
				regexp.MustCompile(`(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})`),
			},
		},
		{
			field: "cpf",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)cpf[:\s]+(\d{3}\.?\d{3}\.?\d{3}[\-.]?\d{2})`),
				regexp.MustCompile(`(\d{3}\.?\d{3}\.?\d{3}[\-.]?\d{2})`),
			},
			accept: digitCount(11),
		},
	}

	cnpjRules = []fieldRule{
		{
			field: "empresa",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)razão social[:\s]+([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]{5,})`),
				regexp.MustCompile(`(?i)nome fantasia[:\s]+([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]{5,})`),
				regexp.MustCompile(`(?i)empresa[:\s]+([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]{5,})`),
				regexp.MustCompile(`(?im)^([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]{10,})\s*LTDA`),
				regexp.MustCompile(`(?im)^([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]{10,})\s*S\.?A\.?`),
			},
			accept: minLen(5),
		},
		{
			field: "cnpj",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)cnpj[:\s]+(\d{2}\.?\d{3}\.?\d{3}[/\-]?\d{4}[\-.]?\d{2})`),
				regexp.MustCompile(`(\d{2}\.?\d{3}\.?\d{3}[/\-]?\d{4}[\-.]?\d{2})`),
			},
			accept: digitCount(14),
		},
		{
			field: "nome_comprovante",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^([A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]*(?:LTDA|S\.?A\.?|EIRELI|ME|EPP)[A-ZÁÀÂÃÉÊÍÓÔÕÚÇ \-.]*)$`),
			},
			accept:   minLen(10),
			copyFrom: "empresa",
		},
	}

	addressRules = []fieldRule{
		{
			field: "cep",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)cep[:\s]+(\d{5}[\-.]?\d{3})`),
				regexp.MustCompile(`(\d{5}[\-.]?\d{3})`),
			},
			accept: digitCount(8),
		},
		{
			field: "complemento",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)complemento[:\s]+([A-Z0-9][A-Z0-9 \-]*)`),
				regexp.MustCompile(`(?i)\b((?:quadra|qd|lote|lt|casa|apartamento|apto|apt|bloco)\.?\s*:?\s*[A-Z0-9][A-Z0-9 \-]*)`),
			},
			accept: maxLen(20),
			multi:  true,
		},
	}
)

// rulesFor returns the declarative fallback rule set for a document kind.
// Kinds without rules (facade) yield an empty record from pattern extraction.
func rulesFor(kind domain.DocumentKind) []fieldRule {
	switch kind {
	case domain.KindRG:
		return rgRules
	case domain.KindCNPJ:
		return cnpjRules
	case domain.KindAddress:
		return addressRules
	}
	return nil
}
