package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marketpulse/finrag/config"
	"github.com/marketpulse/finrag/internal/audit"
	"github.com/marketpulse/finrag/models"
	mock_provider "github.com/marketpulse/finrag/provider/mock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:    config.ServerConfig{Address: ":0"},
		LLM:       config.LLMConfig{Provider: "mock", Timeout: time.Second},
		Retrieval: config.RetrievalConfig{TopK: 8, Scorer: "terms"},
		Citations: config.CitationsConfig{MaxItems: 3, MaxBackfill: 1},
		Audit:     config.AuditConfig{LogPath: filepath.Join(t.TempDir(), "audit.log")},
	}
}

func testDocs() []models.Document {
	return []models.Document{
		{ID: "A", Ticker: "AAPL", Title: "Apple earnings beat", Text: "Apple beat earnings and guided higher.", Link: "https://x/a", OrderIndex: 0},
		{ID: "B", Ticker: "SPY", Title: "Broad selloff", Text: "Stocks fell across sectors.", Link: "https://x/b", OrderIndex: 1},
	}
}

func testApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := newApp(cfg, testDocs(), mock_provider.New())
	if err != nil {
		t.Fatalf("newApp() error: %v", err)
	}
	return app
}

func TestChatAnsweredTurn(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	app := testApp(t, cfg)

	res := app.Chat(context.Background(), "What did Apple report?")
	if strings.Contains(res.Answer, "I don’t know") {
		t.Fatalf("expected an answer, got refusal: %q", res.Answer)
	}
	if len(res.Citations) == 0 || res.Citations[0].Ticker != "AAPL" {
		t.Fatalf("expected AAPL citation first, got %+v", res.Citations)
	}
	if res.FactCheck.Verdict != models.VerdictPass && res.FactCheck.Verdict != models.VerdictWarn {
		t.Fatalf("unexpected verdict %s", res.FactCheck.Verdict)
	}
	if len(res.Targets) != 1 || res.Targets[0] != "AAPL" {
		t.Fatalf("targets = %v", res.Targets)
	}
}

func TestChatEmptyQuestion(t *testing.T) {
	t.Parallel()
	app := testApp(t, testConfig(t))
	res := app.Chat(context.Background(), "   ")
	if res.Answer != emptyQuestionReply {
		t.Fatalf("answer = %q", res.Answer)
	}
	if res.FactCheck.Verdict != models.VerdictSkipped {
		t.Fatalf("verdict = %s, want SKIPPED", res.FactCheck.Verdict)
	}
}

func TestChatNoHitsRefuses(t *testing.T) {
	t.Parallel()
	app := testApp(t, testConfig(t))
	res := app.Chat(context.Background(), "cryptocurrency mining difficulty")
	if !strings.Contains(res.Answer, "I don’t know") {
		t.Fatalf("expected refusal, got %q", res.Answer)
	}
	if len(res.Citations) != 0 {
		t.Fatalf("refusal must carry no citations: %+v", res.Citations)
	}
}

func TestChatWritesAuditRecordWithContextHash(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	app := testApp(t, cfg)

	app.Chat(context.Background(), "What did Apple report?")

	f, err := os.Open(cfg.Audit.LogPath)
	if err != nil {
		t.Fatalf("audit log missing: %v", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatalf("no audit record written")
	}
	var rec models.InteractionRecord
	if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
		t.Fatalf("bad audit line: %v", err)
	}
	if sc.Scan() {
		t.Fatalf("expected exactly one record")
	}

	// The stored hash must equal the digest of the exact formatted context.
	hits := app.engine.Retrieve(app.idx, "What did Apple report?", cfg.Retrieval.TopK)
	wantCtx := FormatContext(hits, cfg.Citations.MaxItems)
	if rec.ContextHash != audit.ContextHash(wantCtx) {
		t.Fatalf("context hash drifted: %s", rec.ContextHash)
	}
	if rec.ElapsedMS == nil {
		t.Fatalf("elapsed_ms missing")
	}
	if rec.Extra["interaction_id"] == "" {
		t.Fatalf("interaction id missing: %v", rec.Extra)
	}
}

func TestHTTPChatEndpoint(t *testing.T) {
	t.Parallel()
	e := newEcho(testApp(t, testConfig(t)))

	body := strings.NewReader(`{"question":"What did Apple report?"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Answer == "" || len(resp.Citations) == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHTTPChatRejectsBadBody(t *testing.T) {
	t.Parallel()
	e := newEcho(testApp(t, testConfig(t)))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHTTPHealthz(t *testing.T) {
	t.Parallel()
	e := newEcho(testApp(t, testConfig(t)))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var h models.Healthz
	if err := json.Unmarshal(rr.Body.Bytes(), &h); err != nil {
		t.Fatalf("bad healthz body: %v", err)
	}
	if !h.OK || h.Docs != 2 {
		t.Fatalf("healthz = %+v", h)
	}
}
