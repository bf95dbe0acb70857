// Package audit appends one structured JSONL record per chat interaction.
//
// Recording is best-effort: a failed write is dropped, never surfaced, so
// the answer path stays available when the log target is not.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/marketpulse/finrag/models"
)

// Disabled is the sentinel path for in-memory / no-op recording; the empty
// string disables as well.
const Disabled = ":memory:"

// EnvLogPath overrides the default log location.
const EnvLogPath = "FINRAG_AUDIT_LOG"

const defaultLogPath = "logs/interactions.log"

// DefaultPath resolves the audit log location from the environment,
// falling back to logs/interactions.log.
func DefaultPath() string {
	if p := os.Getenv(EnvLogPath); p != "" {
		return p
	}
	return defaultLogPath
}

// Recorder appends interaction records to a JSONL file. Concurrent Record
// calls serialize on an internal mutex so lines never interleave.
type Recorder struct {
	path   string
	mu     sync.Mutex
	logger *log.Logger
}

// NewRecorder builds a recorder for the given path. "" and ":memory:"
// disable persistence entirely; otherwise parent directories are created
// up front (failure there is deferred to write time and swallowed).
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		path:   path,
		logger: log.New(log.Writer(), "[AUDIT] ", log.LstdFlags),
	}
	if r.Enabled() {
		if parent := filepath.Dir(path); parent != "." && parent != "" {
			_ = os.MkdirAll(parent, 0o755)
		}
	}
	return r
}

// Enabled reports whether records are persisted.
func (r *Recorder) Enabled() bool {
	return r.path != "" && r.path != Disabled
}

// Entry carries everything one interaction record is built from. Context
// must be the exact byte sequence handed to the generator.
type Entry struct {
	StartedAt time.Time
	Question  string
	Targets   []string
	Hits      []models.Document
	Context   string
	Answer    string
	FactCheck models.FactCheck
	Extra     map[string]any
}

// Record builds and appends one record. It never returns an error: write
// failures are logged and dropped.
func (r *Recorder) Record(e Entry) {
	if !r.Enabled() {
		return
	}

	ended := time.Now()
	var elapsed *int64
	if !e.StartedAt.IsZero() {
		ms := ended.Sub(e.StartedAt).Milliseconds()
		elapsed = &ms
	}

	targets := e.Targets
	if targets == nil {
		targets = []string{}
	}
	retrieved := make([]models.RetrievedDoc, 0, len(e.Hits))
	for _, d := range e.Hits {
		retrieved = append(retrieved, models.RetrievedDoc{
			ID:         d.ID,
			Title:      d.Title,
			Link:       d.Link,
			Ticker:     d.CanonicalTicker(),
			OrderIndex: d.OrderIndex,
		})
	}

	rec := models.InteractionRecord{
		StartedAt:   Timestamp(e.StartedAt),
		EndedAt:     Timestamp(ended),
		ElapsedMS:   elapsed,
		Question:    e.Question,
		Targets:     targets,
		Retrieved:   retrieved,
		ContextHash: ContextHash(e.Context),
		Answer:      e.Answer,
		FactCheck:   e.FactCheck,
		Extra:       e.Extra,
	}
	if e.StartedAt.IsZero() {
		rec.StartedAt = ""
	}

	line, err := json.Marshal(rec)
	if err != nil {
		r.logger.Printf("marshal failed: %v", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Printf("open %s failed: %v", r.path, err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		r.logger.Printf("append failed: %v", err)
	}
}

// ContextHash is the SHA-256 hex digest of the exact context bytes.
func ContextHash(context string) string {
	sum := sha256.Sum256([]byte(context))
	return hex.EncodeToString(sum[:])
}

// Timestamp renders a time as ISO-8601 UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
