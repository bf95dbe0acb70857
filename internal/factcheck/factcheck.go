// Package factcheck judges whether a generated answer is supported by the
// exact context string the generator saw.
//
// Verification is a safety net, not a gate: the model-based strategy fails
// open to a cautious WARN verdict on any call or parse failure, and the
// lexical strategy is tuned to under-flag rather than reject. Check never
// returns an error.
package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/marketpulse/finrag/models"
	"github.com/marketpulse/finrag/provider"
)

const (
	// overlapThreshold is the token-overlap ratio below which a sentence
	// is considered unsupported by the lexical strategy.
	overlapThreshold = 0.08
	// minFlagLength keeps short connective sentences from being flagged.
	minFlagLength = 20
	// maxClaims caps how many flagged sentences are surfaced.
	maxClaims = 5
)

var wordRE = regexp.MustCompile(`[A-Za-z0-9']+`)

// Agent verifies answers against their retrieval context.
type Agent struct {
	llm provider.Provider
}

// New returns an agent backed by the given provider. A nil or
// deterministic provider routes every check to the lexical strategy.
func New(llm provider.Provider) *Agent {
	return &Agent{llm: llm}
}

// Check inspects answer against context and returns a verdict. It never
// fails: model errors degrade to a fixed WARN fallback.
func (a *Agent) Check(ctx context.Context, question, answer, ragContext string) models.FactCheck {
	if a.llm == nil || a.llm.Deterministic() {
		return lexicalCheck(answer, ragContext)
	}
	return a.modelCheck(ctx, question, answer, ragContext)
}

func (a *Agent) modelCheck(ctx context.Context, question, answer, ragContext string) models.FactCheck {
	fallback := models.FactCheck{
		Verdict:           models.VerdictWarn,
		UnsupportedClaims: []string{},
		Confidence:        0.5,
		Notes:             "fallback",
	}

	prompt := verifyPrompt(question, answer, ragContext)
	raw, err := a.llm.Complete(ctx, prompt, "Be strict, concise, and only judge based on the context. Output JSON only.")
	if err != nil {
		return fallback
	}

	parsed, ok := parseVerdictJSON(raw)
	if !ok {
		return fallback
	}
	return normalizeVerdict(parsed)
}

// parseVerdictJSON is two-tier: direct parse first, then the substring
// between the first '{' and the last '}'.
func parseVerdictJSON(raw string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		return m, true
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &m); err == nil {
			return m, true
		}
	}
	return nil, false
}

// normalizeVerdict coerces loosely-typed model output into a FactCheck:
// verdict defaults to WARN, claims are wrapped into a list, confidence
// defaults to 0.6 and notes to empty.
func normalizeVerdict(m map[string]any) models.FactCheck {
	out := models.FactCheck{
		Verdict:           models.VerdictWarn,
		UnsupportedClaims: []string{},
		Confidence:        0.6,
		Notes:             "",
	}
	if v, ok := m["verdict"].(string); ok && v != "" {
		out.Verdict = models.Verdict(strings.ToUpper(v))
	}
	switch uc := m["unsupported_claims"].(type) {
	case []any:
		for _, c := range uc {
			out.UnsupportedClaims = append(out.UnsupportedClaims, fmt.Sprint(c))
		}
	case nil:
	default:
		out.UnsupportedClaims = append(out.UnsupportedClaims, fmt.Sprint(uc))
	}
	switch c := m["confidence"].(type) {
	case float64:
		out.Confidence = c
	case string:
		if f, err := strconv.ParseFloat(c, 64); err == nil {
			out.Confidence = f
		}
	}
	if n, ok := m["notes"].(string); ok {
		out.Notes = n
	}
	return out
}

// lexicalCheck flags sentences whose tokens barely appear in the context.
// Sentences of 20 characters or fewer are never flagged, and the verdict
// never goes below WARN; the heuristic only draws attention.
func lexicalCheck(answer, ragContext string) models.FactCheck {
	ctx := strings.ToLower(ragContext)
	var flagged []string
	for _, sentence := range splitSentences(strings.TrimSpace(answer)) {
		tokens := wordRE.FindAllString(strings.ToLower(sentence), -1)
		if len(tokens) == 0 {
			continue
		}
		overlap := 0
		for _, tok := range tokens {
			if strings.Contains(ctx, tok) {
				overlap++
			}
		}
		ratio := float64(overlap) / float64(len(tokens))
		if ratio < overlapThreshold && utf8.RuneCountInString(sentence) > minFlagLength {
			flagged = append(flagged, strings.TrimSpace(sentence))
		}
	}
	if len(flagged) == 0 {
		return models.FactCheck{
			Verdict:           models.VerdictPass,
			UnsupportedClaims: []string{},
			Confidence:        0.7,
			Notes:             "lexical overlap ok",
		}
	}
	if len(flagged) > maxClaims {
		flagged = flagged[:maxClaims]
	}
	return models.FactCheck{
		Verdict:           models.VerdictWarn,
		UnsupportedClaims: flagged,
		Confidence:        0.55,
		Notes:             "lexical overlap low on some sentences",
	}
}

// splitSentences cuts on '.', '!' or '?' followed by whitespace, keeping
// the punctuation with its sentence.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '.' && s[i] != '!' && s[i] != '?' {
			continue
		}
		// Consume a run of closing punctuation.
		j := i
		for j+1 < len(s) && (s[j+1] == '.' || s[j+1] == '!' || s[j+1] == '?') {
			j++
		}
		if j+1 < len(s) && (s[j+1] == ' ' || s[j+1] == '\t' || s[j+1] == '\n' || s[j+1] == '\r') {
			out = append(out, s[start:j+1])
			k := j + 1
			for k < len(s) && (s[k] == ' ' || s[k] == '\t' || s[k] == '\n' || s[k] == '\r') {
				k++
			}
			start = k
			i = k - 1
		} else {
			i = j
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func verifyPrompt(question, answer, ragContext string) string {
	return fmt.Sprintf(`You are a rigorous fact-checker.

Task: Given the user question, an assistant's answer, and the exact context snippets used
(from a news dataset), identify any specific claims in the answer that are NOT explicitly
supported by the provided context.

Return a compact JSON with fields:
- verdict: "PASS" (all supported), "WARN" (minor unsupported phrasing), or "FAIL" (one or more factual claims unsupported)
- unsupported_claims: array of short strings, each an unsupported claim as it appears or paraphrased
- confidence: number [0,1]
- notes: single short line rationale

QUESTION:
%s

ANSWER:
%s

CONTEXT:
%s
`, question, answer, ragContext)
}
