package models

// Ticker buckets used by the cleaned dataset for items that could not be
// attributed to a single company.
const (
	TickerMisc  = "MISC"
	TickerMulti = "MULTI"
)

// Label confidence values assigned by the upstream ticker-repair step.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Document is one news article from the cleaned corpus. Documents are
// immutable once loaded; the loader owns field resolution.
type Document struct {
	ID              string   `json:"id"`
	Ticker          string   `json:"ticker"`
	Title           string   `json:"title"`
	Text            string   `json:"text"`
	Link            string   `json:"link"`
	OrderIndex      int      `json:"order_index"`
	OrigTicker      string   `json:"orig_ticker,omitempty"`
	RepairedTicker  string   `json:"repaired_ticker,omitempty"`
	LabelConfidence string   `json:"label_confidence,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	DetectedTickers []string `json:"detected_tickers,omitempty"`
}

// CanonicalTicker returns the repaired ticker when the cleanup pipeline
// assigned one, else the bucket ticker.
func (d Document) CanonicalTicker() string {
	if d.RepairedTicker != "" {
		return d.RepairedTicker
	}
	return d.Ticker
}

// Citation points a reader at one source used to answer a question.
type Citation struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Ticker string `json:"ticker,omitempty"`
}

// Verdict is the categorical outcome of fact verification.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictWarn    Verdict = "WARN"
	VerdictFail    Verdict = "FAIL"
	VerdictSkipped Verdict = "SKIPPED"
)

// FactCheck is the result of verifying a generated answer against the
// exact context it was produced from.
type FactCheck struct {
	Verdict           Verdict  `json:"verdict"`
	UnsupportedClaims []string `json:"unsupported_claims"`
	Confidence        float64  `json:"confidence"`
	Notes             string   `json:"notes"`
}

// RetrievedDoc is the audit-record projection of one retrieved document.
type RetrievedDoc struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Ticker     string `json:"ticker"`
	OrderIndex int    `json:"order_index"`
}

// InteractionRecord is one append-only audit line per chat turn.
type InteractionRecord struct {
	StartedAt   string         `json:"started_at"`
	EndedAt     string         `json:"ended_at"`
	ElapsedMS   *int64         `json:"elapsed_ms"`
	Question    string         `json:"question"`
	Targets     []string       `json:"targets"`
	Retrieved   []RetrievedDoc `json:"retrieved"`
	ContextHash string         `json:"context_hash"`
	Answer      string         `json:"answer"`
	FactCheck   FactCheck      `json:"fact_check"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the reply of POST /chat.
type ChatResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Healthz is the reply of GET /healthz.
type Healthz struct {
	OK   bool `json:"ok"`
	Docs int  `json:"docs"`
}
