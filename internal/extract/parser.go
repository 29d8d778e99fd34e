// Package extract converts raw vision-model answers into typed records using
// a layered strategy: direct JSON, embedded JSON, then per-kind pattern rules.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"walksocr/internal/domain"
	"walksocr/internal/schema"
)

// Strategy identifies which extraction strategy produced a record.
type Strategy string

const (
	StrategyDirectJSON   Strategy = "direct_json"
	StrategyEmbeddedJSON Strategy = "embedded_json"
	// StrategyPatterns is the regex fallback. Reaching it is not a failure,
	// but callers log it as a degraded parse.
	StrategyPatterns Strategy = "patterns"
)

// Parser structures raw model responses. Safe for concurrent use.
type Parser struct {
	registry *schema.Registry
}

// NewParser creates a Parser backed by the given schema registry.
func NewParser(registry *schema.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse converts rawText into a ParsedRecord for kind. It never fails on
// malformed model output: when every strategy comes up empty the record has
// all essential fields null. An unknown kind is the only error condition.
func (p *Parser) Parse(rawText string, kind domain.DocumentKind) (domain.ParsedRecord, Strategy, error) {
	s, err := p.registry.Lookup(kind)
	if err != nil {
		return nil, "", err
	}

	record, strategy := p.extract(rawText, kind)
	normalizeValues(record)
	ensureEssentialFields(record, s.EssentialFields)
	return record, strategy, nil
}

func (p *Parser) extract(rawText string, kind domain.DocumentKind) (domain.ParsedRecord, Strategy) {
	if rec, ok := extractDirectJSON(rawText); ok {
		return rec, StrategyDirectJSON
	}
	if rec, ok := extractEmbeddedJSON(rawText); ok {
		return rec, StrategyEmbeddedJSON
	}
	return extractWithRules(rawText, rulesFor(kind)), StrategyPatterns
}

// extractDirectJSON parses the whole trimmed text as a JSON object.
func extractDirectJSON(text string) (domain.ParsedRecord, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return nil, false
	}
	return decodeObject(trimmed)
}

var jsonCandidateRes = []*regexp.Regexp{
	regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile("(?is)```\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile(`(?s)(\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\})`),
}

// extractEmbeddedJSON scans for JSON-looking substrings: fenced code blocks
// first, then bare near-balanced brace groups. First candidate that parses
// as an object wins.
func extractEmbeddedJSON(text string) (domain.ParsedRecord, bool) {
	for _, re := range jsonCandidateRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if rec, ok := decodeObject(strings.TrimSpace(m[1])); ok {
				return rec, true
			}
		}
	}
	return nil, false
}

// decodeObject unmarshals a JSON object into a ParsedRecord, stringifying
// scalar values and skipping nested structures.
func decodeObject(candidate string) (domain.ParsedRecord, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, false
	}
	rec := make(domain.ParsedRecord, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			rec[k] = nil
		case string:
			rec.Set(k, t)
		case float64:
			rec.Set(k, trimFloat(t))
		case bool:
			rec.Set(k, fmt.Sprintf("%t", t))
		default:
			// Arrays/objects are noise for flat document records.
		}
	}
	return rec, true
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeValues trims every value, collapses inner whitespace, and maps
// "null"/"none"/"" (case-insensitive) to null.
func normalizeValues(rec domain.ParsedRecord) {
	for k, v := range rec {
		if v == nil {
			continue
		}
		cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(*v), " ")
		lower := strings.ToLower(cleaned)
		if cleaned == "" || lower == "null" || lower == "none" {
			rec[k] = nil
			continue
		}
		rec[k] = &cleaned
	}
}

// ensureEssentialFields guarantees every schema field is present, null when
// not extracted.
func ensureEssentialFields(rec domain.ParsedRecord, essential []string) {
	for _, f := range essential {
		if _, ok := rec[f]; !ok {
			rec[f] = nil
		}
	}
}
