package screening

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"HireSight-backend/internal/model"
)

func TestNeedsScoring(t *testing.T) {
	assert.True(t, NeedsScoring(&model.Application{}))
	assert.False(t, NeedsScoring(&model.Application{
		AI: &model.AIScreening{Score: 0, Confidence: 0},
	}))
}

func TestGateSingleFlight(t *testing.T) {
	g := NewGate()
	applicant := uuid.New()

	assert.True(t, g.TryBegin(1, applicant))
	assert.False(t, g.TryBegin(1, applicant))

	// Different job or applicant is a different pair.
	assert.True(t, g.TryBegin(2, applicant))
	assert.True(t, g.TryBegin(1, uuid.New()))

	g.Finish(1, applicant)
	assert.True(t, g.TryBegin(1, applicant))
}

func TestGateFinishWithoutBegin(t *testing.T) {
	g := NewGate()
	// Must not panic.
	g.Finish(1, uuid.New())
}
