package screening

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScoreCache(t *testing.T) {
	c := NewScoreCache()
	applicant := uuid.New()

	_, ok := c.Lookup(1, applicant)
	assert.False(t, ok)

	score := CachedScore{Score: 72, Confidence: 88, ScoredAt: time.Now()}
	c.Put(1, applicant, score)

	got, ok := c.Lookup(1, applicant)
	assert.True(t, ok)
	assert.Equal(t, score, got)

	// Same applicant under a different job is a separate entry.
	_, ok = c.Lookup(2, applicant)
	assert.False(t, ok)

	c.Invalidate(1, applicant)
	_, ok = c.Lookup(1, applicant)
	assert.False(t, ok)
}
