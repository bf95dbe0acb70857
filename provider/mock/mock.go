// Package mock_provider is a deterministic offline completion provider.
// It answers by quoting the CONTEXT block embedded in the prompt, which
// keeps the whole pipeline runnable and testable without network access.
package mock_provider

import (
	"context"
	"strings"

	"github.com/marketpulse/finrag/internal/prompts"
)

// Provider is the deterministic offline completion provider.
type Provider struct{}

// New returns the mock provider.
func New() *Provider { return &Provider{} }

// Deterministic reports that outputs are reproducible, which routes
// verification to the lexical strategy.
func (p *Provider) Deterministic() bool { return true }

// Complete extracts the CONTEXT block between the prompt markers, harvests
// up to three bracketed sources, and returns a lead line plus a Sources
// list. Prompts without usable context get the refusal reply.
func (p *Provider) Complete(_ context.Context, prompt, _ string) (string, error) {
	start := strings.Index(prompt, prompts.ContextStart)
	end := strings.Index(prompt, prompts.ContextEnd)
	if start < 0 || end < 0 || end <= start {
		return prompts.Refusal, nil
	}
	ctx := strings.TrimSpace(prompt[start+len(prompts.ContextStart) : end])

	type source struct{ title, link string }
	var sources []source
	var lead string
	for _, line := range strings.Split(ctx, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "CONTEXT:" {
			continue
		}
		lb := strings.Index(line, "[")
		rb := strings.Index(line, "]")
		if lb >= 0 && rb > lb {
			title := strings.TrimSpace(line[lb+1 : rb])
			link := ""
			if li := strings.Index(line, "(LINK:"); li >= 0 {
				rest := line[li+len("(LINK:"):]
				if ri := strings.Index(rest, ")"); ri >= 0 {
					link = strings.TrimSpace(rest[:ri])
				}
			}
			sources = append(sources, source{title: title, link: link})
			continue
		}
		if lead == "" {
			lead = line
		}
	}
	if len(sources) == 0 {
		return prompts.Refusal, nil
	}
	if lead == "" {
		lead = sources[0].title + "."
	}

	var b strings.Builder
	b.WriteString(lead)
	b.WriteString("\nSources:\n")
	for i, s := range sources {
		if i >= 3 {
			break
		}
		link := s.link
		if link == "" {
			link = "#"
		}
		b.WriteString("- " + s.title + " — " + link + "\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
