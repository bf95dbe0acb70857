package server

import (
	"fmt"
	"strings"

	"github.com/marketpulse/finrag/models"
)

// excerptLen bounds how much body text one context entry carries.
const excerptLen = 220

// FormatContext turns ranked hits into the exact text blob handed to the
// generator: a CONTEXT: header followed by numbered entries
//
//	n) [Title] excerpt (LINK: url)
//
// deduplicated by (title, link) and capped at maxItems. The returned
// string is hashed byte-for-byte by the audit recorder, so callers must
// pass this exact value downstream.
func FormatContext(hits []models.Document, maxItems int) string {
	var lines []string
	seen := make(map[[2]string]struct{})
	count := 0
	for _, d := range hits {
		key := [2]string{d.Title, d.Link}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		count++

		title := d.Title
		if title == "" {
			title = "Untitled"
		}
		body := d.Text
		if body == "" {
			body = d.Title
		}
		body = strings.ReplaceAll(excerpt(body, excerptLen), "\n", " ")
		link := d.Link
		if link == "" {
			link = "#"
		}
		lines = append(lines, fmt.Sprintf("%d) [%s] %s (LINK: %s)", count, title, body, link))
		if count >= maxItems {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "CONTEXT:\n" + strings.Join(lines, "\n")
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
