// Package ticker maps free text to canonical stock symbols via alias
// matching. The alias table is fixed at startup and never mutated.
package ticker

import (
	"sort"
	"strings"
)

// aliases maps a canonical symbol to the lowercase names that imply it.
// Matching is plain substring containment, so multi-word aliases match
// as contiguous text.
var aliases = map[string][]string{
	"AAPL":  {"apple", "apple inc", "aapl", "iphone", "mac", "ipad", "watch", "vision pro"},
	"AMZN":  {"amazon", "amazon.com", "amzn", "aws"},
	"MSFT":  {"microsoft", "msft", "azure", "windows", "office", "copilot"},
	"GOOGL": {"alphabet", "google", "googl", "android", "gemini"},
	"META":  {"meta", "facebook", "instagram", "whatsapp", "threads"},
	"NVDA":  {"nvidia", "nvda"},
	"IBM":   {"ibm", "international business machines"},
	"CSCO":  {"cisco", "csco"},
}

// Detect returns the symbols whose aliases appear in the query, sorted
// lexicographically so downstream ranking is reproducible. An empty query
// yields an empty result.
func Detect(query string) []string {
	ql := strings.ToLower(query)
	var hits []string
	for sym, names := range aliases {
		for _, a := range names {
			if strings.Contains(ql, a) {
				hits = append(hits, sym)
				break
			}
		}
	}
	sort.Strings(hits)
	return hits
}

// Aliases returns the alias strings registered for a symbol, or nil for an
// unknown symbol.
func Aliases(symbol string) []string {
	return aliases[symbol]
}

// Contains reports whether any alias of symbol appears in s. The check is
// case-insensitive.
func Contains(s, symbol string) bool {
	sl := strings.ToLower(s)
	for _, a := range aliases[symbol] {
		if strings.Contains(sl, a) {
			return true
		}
	}
	return false
}
