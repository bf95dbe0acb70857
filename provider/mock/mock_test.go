package mock_provider

import (
	"context"
	"strings"
	"testing"

	"github.com/marketpulse/finrag/internal/prompts"
)

func TestCompleteQuotesContextSources(t *testing.T) {
	t.Parallel()
	prompt := prompts.BuildAnswerPrompt("What happened to Apple?", `CONTEXT:
1) [Apple earnings beat] Apple beat earnings and guided higher. (LINK: https://x/a)
2) [Market update] Stocks mixed. (LINK: https://x/s)`)

	got, err := New().Complete(context.Background(), prompt, "")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if !strings.Contains(got, "Sources:") {
		t.Fatalf("expected Sources section, got %q", got)
	}
	if !strings.Contains(got, "Apple earnings beat — https://x/a") {
		t.Fatalf("expected first source with link, got %q", got)
	}
}

func TestCompleteDeterministic(t *testing.T) {
	t.Parallel()
	prompt := prompts.BuildAnswerPrompt("q", "CONTEXT:\n1) [T] body (LINK: https://x/t)")
	p := New()
	a, _ := p.Complete(context.Background(), prompt, "")
	b, _ := p.Complete(context.Background(), prompt, "")
	if a != b {
		t.Fatalf("mock output not deterministic: %q vs %q", a, b)
	}
	if !p.Deterministic() {
		t.Fatalf("mock must report deterministic")
	}
}

func TestCompleteWithoutContextRefuses(t *testing.T) {
	t.Parallel()
	got, err := New().Complete(context.Background(), "no markers here", "")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != prompts.Refusal {
		t.Fatalf("expected refusal, got %q", got)
	}
}

func TestCompleteEmptyContextRefuses(t *testing.T) {
	t.Parallel()
	prompt := prompts.BuildAnswerPrompt("q", "")
	got, err := New().Complete(context.Background(), prompt, "")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != prompts.Refusal {
		t.Fatalf("expected refusal for empty context, got %q", got)
	}
}

func TestCompleteCapsSourcesAtThree(t *testing.T) {
	t.Parallel()
	prompt := prompts.BuildAnswerPrompt("q", `CONTEXT:
1) [One] a (LINK: https://x/1)
2) [Two] b (LINK: https://x/2)
3) [Three] c (LINK: https://x/3)
4) [Four] d (LINK: https://x/4)`)
	got, _ := New().Complete(context.Background(), prompt, "")
	if strings.Contains(got, "Four") {
		t.Fatalf("expected at most 3 sources, got %q", got)
	}
}
