package flow

import (
	"time"

	"github.com/google/uuid"

	"ideaunpack/internal/logging"
)

// Record is one append-only provenance entry: which step ran, which
// provider was responsible, and a short detail string.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Step      string    `json:"step"`
	Provider  string    `json:"provider"`
	Detail    string    `json:"detail"`
}

// Trail collects provenance records for one session. The pipeline only
// appends to it; nothing in the core reads it back.
type Trail struct {
	logger  logging.Logger
	records []Record
}

// NewTrail creates an empty provenance trail.
func NewTrail(logger logging.Logger) *Trail {
	return &Trail{logger: logger}
}

// Add appends a timestamped record and mirrors it to the debug log.
func (t *Trail) Add(step, provider, detail string) {
	record := Record{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Step:      step,
		Provider:  provider,
		Detail:    detail,
	}
	t.records = append(t.records, record)
	t.logger.Debug("provenance", "step", step, "provider", provider, "detail", detail)
}

// Records returns a copy of the trail so far.
func (t *Trail) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}
