package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marketpulse/finrag/config"
	"github.com/marketpulse/finrag/internal/audit"
	"github.com/marketpulse/finrag/internal/citation"
	"github.com/marketpulse/finrag/internal/corpus"
	"github.com/marketpulse/finrag/internal/factcheck"
	"github.com/marketpulse/finrag/internal/prompts"
	"github.com/marketpulse/finrag/internal/retrieval"
	"github.com/marketpulse/finrag/internal/ticker"
	"github.com/marketpulse/finrag/models"
	"github.com/marketpulse/finrag/provider"
)

// emptyQuestionReply answers blank input without touching the pipeline.
const emptyQuestionReply = "Please enter a question about the provided news dataset."

// App wires the retrieval, generation, verification and audit stages into
// the chat pipeline. All fields are read-only after construction, so one
// App serves concurrent requests.
type App struct {
	cfg      *config.Config
	idx      *corpus.Index
	engine   *retrieval.Engine
	llm      provider.Provider
	checker  *factcheck.Agent
	recorder *audit.Recorder
	logger   *log.Logger
}

// NewApp loads the corpus, builds the index and constructs the provider
// named by the configuration.
func NewApp(cfg *config.Config) (*App, error) {
	docs, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	llm, err := provider.New(provider.Client(cfg.LLM.Provider), provider.Options{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return newApp(cfg, docs, llm)
}

func newApp(cfg *config.Config, docs []models.Document, llm provider.Provider) (*App, error) {
	idx, err := corpus.NewIndex(docs)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:      cfg,
		idx:      idx,
		engine:   retrieval.NewEngine(cfg.Retrieval.Scorer),
		llm:      llm,
		checker:  factcheck.New(llm),
		recorder: audit.NewRecorder(cfg.Audit.LogPath),
		logger:   log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}, nil
}

// Docs returns the corpus size for health reporting.
func (a *App) Docs() int { return a.idx.Size() }

// ChatResult is one completed chat turn.
type ChatResult struct {
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
	FactCheck models.FactCheck  `json:"fact_check"`
	Targets   []string          `json:"targets"`
}

// Chat runs the full pipeline for one question: detect targets, retrieve,
// format context, generate, verify, select citations, record. Failures
// past retrieval degrade to the refusal answer; nothing here returns an
// error to the transport layer.
func (a *App) Chat(ctx context.Context, question string) ChatResult {
	q := strings.TrimSpace(question)
	if q == "" {
		chatRequests.WithLabelValues("empty_question").Inc()
		return ChatResult{
			Answer:    emptyQuestionReply,
			Citations: []models.Citation{},
			FactCheck: skippedCheck("empty question"),
			Targets:   []string{},
		}
	}

	started := time.Now()
	targets := ticker.Detect(q)
	if targets == nil {
		targets = []string{}
	}

	retrStart := time.Now()
	hits := a.engine.Retrieve(a.idx, q, a.cfg.Retrieval.TopK)
	retrievalSeconds.Observe(time.Since(retrStart).Seconds())

	if len(hits) == 0 {
		chatRequests.WithLabelValues("refused").Inc()
		fc := skippedCheck("no documents retrieved")
		a.record(started, q, targets, nil, "", prompts.Refusal, fc)
		return ChatResult{
			Answer:    prompts.Refusal,
			Citations: []models.Citation{},
			FactCheck: fc,
			Targets:   targets,
		}
	}

	ragContext := FormatContext(hits, a.cfg.Citations.MaxItems)

	system := prompts.AnswerSystemPrompt
	if len(targets) > 0 {
		system += prompts.FocusSuffix(strings.Join(targets, ", "))
	}

	answer, err := a.llm.Complete(ctx, prompts.BuildAnswerPrompt(q, ragContext), system)
	var fc models.FactCheck
	if err != nil {
		a.logger.Printf("completion failed: %v", err)
		answer = prompts.Refusal
		fc = skippedCheck("generator unavailable")
		chatRequests.WithLabelValues("refused").Inc()
	} else {
		fc = a.checker.Check(ctx, q, answer, ragContext)
		chatRequests.WithLabelValues("answered").Inc()
	}
	factCheckVerdicts.WithLabelValues(string(fc.Verdict)).Inc()

	citations := citation.Select(hits, targets, a.cfg.Citations.MaxItems, a.cfg.Citations.MaxBackfill)
	a.record(started, q, targets, hits, ragContext, answer, fc)

	return ChatResult{
		Answer:    answer,
		Citations: citations,
		FactCheck: fc,
		Targets:   targets,
	}
}

func (a *App) record(started time.Time, question string, targets []string, hits []models.Document, ragContext, answer string, fc models.FactCheck) {
	a.recorder.Record(audit.Entry{
		StartedAt: started,
		Question:  question,
		Targets:   targets,
		Hits:      hits,
		Context:   ragContext,
		Answer:    answer,
		FactCheck: fc,
		Extra:     map[string]any{"interaction_id": uuid.NewString()},
	})
}

func skippedCheck(notes string) models.FactCheck {
	return models.FactCheck{
		Verdict:           models.VerdictSkipped,
		UnsupportedClaims: []string{},
		Confidence:        0,
		Notes:             notes,
	}
}
