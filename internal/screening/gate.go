package screening

import (
	"sync"

	"github.com/google/uuid"

	"HireSight-backend/internal/model"
)

// Gate decides which applications still need an AI score and guarantees at
// most one in-flight scoring operation per (job, applicant) pair. The
// decision is made from the persisted application document only; the score
// cache never gates scoring, so a stale cache after a reload cannot cause
// double-scoring.
type Gate struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGate creates a Gate with no in-flight operations.
func NewGate() *Gate {
	return &Gate{inflight: make(map[string]struct{})}
}

// NeedsScoring reports whether the application has no persisted AI result.
// Score and confidence are written together in one document update, so the
// presence of the screening block is the whole condition.
func NeedsScoring(app *model.Application) bool {
	return app.AI == nil
}

// TryBegin marks the pair as in flight. It returns false when a scoring
// operation for the same pair is already outstanding, in which case the
// caller must skip the candidate.
func (g *Gate) TryBegin(jobID uint, applicantID uuid.UUID) bool {
	key := screeningKey(jobID, applicantID)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// Finish clears the in-flight mark for the pair, whether scoring succeeded
// or not.
func (g *Gate) Finish(jobID uint, applicantID uuid.UUID) {
	key := screeningKey(jobID, applicantID)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}
