package screening

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CachedScore is the display-only copy of a persisted score.
type CachedScore struct {
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	ScoredAt   time.Time `json:"scored_at"`
}

// ScoreCache is a read-through convenience cache keyed by (job, applicant).
// The persisted application document is the single source of truth: the
// cache serves fast display before an authoritative fetch resolves and is
// never consulted for the needs-scoring decision.
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[string]CachedScore
}

// NewScoreCache creates an empty score cache.
func NewScoreCache() *ScoreCache {
	return &ScoreCache{entries: make(map[string]CachedScore)}
}

// Put records the score for one (job, applicant) pair.
func (c *ScoreCache) Put(jobID uint, applicantID uuid.UUID, score CachedScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[screeningKey(jobID, applicantID)] = score
}

// Lookup returns the cached score for one (job, applicant) pair, if any.
func (c *ScoreCache) Lookup(jobID uint, applicantID uuid.UUID) (CachedScore, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.entries[screeningKey(jobID, applicantID)]
	return score, ok
}

// Invalidate drops the entry for one (job, applicant) pair.
func (c *ScoreCache) Invalidate(jobID uint, applicantID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, screeningKey(jobID, applicantID))
}

// screeningKey derives the request key for one (job, applicant) pair. The
// same key tracks in-flight scoring in the gate.
func screeningKey(jobID uint, applicantID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", jobID, applicantID)
}
