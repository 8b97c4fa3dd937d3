package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"HireSight-backend/internal/model"
)

func testJob(recruiterID uuid.UUID, apps ...model.Application) model.JobPosting {
	return model.JobPosting{
		ID:          1,
		RecruiterID: recruiterID,
		EditableJobInfo: model.EditableJobInfo{
			Title:   "Backend Engineer",
			Company: "TechNova",
			Skills:  pq.StringArray{"go", "postgresql"},
		},
		Applications: apps,
	}
}

func newTestWorker(store Store, scorer Scorer, extractor Extractor) (*Worker, *ScoreCache) {
	cache := NewScoreCache()
	return NewWorker(store, scorer, extractor, NewGate(), cache, 0), cache
}

func TestRunScoresOnlyUnscored(t *testing.T) {
	recruiter := uuid.New()
	scored, unscored := uuid.New(), uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{
			ApplicantID: scored,
			Status:      model.StatusApplied,
			AI:          &model.AIScreening{Score: 70, Confidence: 90},
		},
		model.Application{ApplicantID: unscored, Status: model.StatusApplied},
	))
	scorer := &fakeScorer{}
	worker, cache := newTestWorker(store, scorer, &fakeExtractor{})

	jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
	summary := worker.Run(context.Background(), Aggregate(jobs))

	assert.Equal(t, BatchSummary{Scored: 1, Skipped: 1}, summary)
	assert.Equal(t, 1, scorer.callCount())

	app := store.application(1, unscored)
	assert.NotNil(t, app.AI)
	assert.Equal(t, float64(75), app.AI.Score)

	cached, ok := cache.Lookup(1, unscored)
	assert.True(t, ok)
	assert.Equal(t, float64(75), cached.Score)
}

func TestRunIsIdempotent(t *testing.T) {
	recruiter := uuid.New()
	applicant := uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{ApplicantID: applicant, Status: model.StatusApplied},
	))
	scorer := &fakeScorer{}
	worker, _ := newTestWorker(store, scorer, &fakeExtractor{})

	for i := 0; i < 2; i++ {
		jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
		worker.Run(context.Background(), Aggregate(jobs))
	}

	// Second run sees the persisted score and skips; exactly one AI call.
	assert.Equal(t, 1, scorer.callCount())
}

func TestRunContinuesAfterScoringFailure(t *testing.T) {
	recruiter := uuid.New()
	bad, good := uuid.New(), uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{ApplicantID: bad, Status: model.StatusApplied, AppliedAt: time.Now()},
		model.Application{ApplicantID: good, Status: model.StatusApplied, AppliedAt: time.Now().Add(-time.Hour)},
	))
	scorer := &fakeScorer{results: map[uuid.UUID]*model.AIScreening{
		// Out-of-range score fails validation for the first candidate.
		bad:  {Score: 140, Confidence: 90},
		good: {Score: 65, Confidence: 80},
	}}
	worker, _ := newTestWorker(store, scorer, &fakeExtractor{})

	jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
	summary := worker.Run(context.Background(), Aggregate(jobs))

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Scored)

	// The failed candidate stays unscored and retryable.
	assert.Nil(t, store.application(1, bad).AI)
	assert.NotNil(t, store.application(1, good).AI)
}

func TestScoringFailureLeavesCandidateRetryable(t *testing.T) {
	recruiter := uuid.New()
	applicant := uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{ApplicantID: applicant, Status: model.StatusApplied},
	))
	scorer := &fakeScorer{err: errors.New("model overloaded")}
	worker, _ := newTestWorker(store, scorer, &fakeExtractor{})

	jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
	summary := worker.Run(context.Background(), Aggregate(jobs))
	assert.Equal(t, BatchSummary{Failed: 1}, summary)
	assert.Nil(t, store.application(1, applicant).AI)

	// The collaborator recovers; the next run scores the candidate.
	scorer.err = nil
	jobs, _ = store.JobsByRecruiter(context.Background(), recruiter)
	summary = worker.Run(context.Background(), Aggregate(jobs))
	assert.Equal(t, BatchSummary{Scored: 1}, summary)
	assert.NotNil(t, store.application(1, applicant).AI)
}

func TestExtractionFailureStillScores(t *testing.T) {
	recruiter := uuid.New()
	applicant := uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{
			ApplicantID: applicant,
			Status:      model.StatusApplied,
			ResumeURL:   "https://storage.example.com/resume.pdf",
		},
	))
	scorer := &fakeScorer{}
	extractor := &fakeExtractor{err: errors.New("corrupt pdf")}
	worker, _ := newTestWorker(store, scorer, extractor)

	jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
	summary := worker.Run(context.Background(), Aggregate(jobs))

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, BatchSummary{Scored: 1}, summary)
	assert.NotNil(t, store.application(1, applicant).AI)
}

func TestExtractionSkippedWithoutResume(t *testing.T) {
	recruiter := uuid.New()
	applicant := uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{ApplicantID: applicant, Status: model.StatusApplied},
	))
	extractor := &fakeExtractor{}
	worker, _ := newTestWorker(store, &fakeScorer{}, extractor)

	jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
	worker.Run(context.Background(), Aggregate(jobs))

	assert.Zero(t, extractor.calls)
}

func TestScoreOneRejectsInFlightCandidate(t *testing.T) {
	recruiter := uuid.New()
	applicant := uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{ApplicantID: applicant, Status: model.StatusApplied},
	))
	worker, _ := newTestWorker(store, &fakeScorer{}, &fakeExtractor{})

	// Simulate an outstanding scoring operation for the same pair.
	assert.True(t, worker.gate.TryBegin(1, applicant))
	defer worker.gate.Finish(1, applicant)

	cand := Candidate{JobID: 1, Application: model.Application{ApplicantID: applicant}}
	err := worker.ScoreOne(context.Background(), &cand)
	assert.Error(t, err)
}

func TestScoreOneNoOpWhenAlreadyScored(t *testing.T) {
	scorer := &fakeScorer{}
	worker, _ := newTestWorker(newFakeStore(), scorer, &fakeExtractor{})

	cand := Candidate{
		JobID: 1,
		Application: model.Application{
			ApplicantID: uuid.New(),
			AI:          &model.AIScreening{Score: 80, Confidence: 90},
		},
	}
	assert.NoError(t, worker.ScoreOne(context.Background(), &cand))
	assert.Zero(t, scorer.callCount())
}

func TestPersistFailureDoesNotMirrorLocally(t *testing.T) {
	recruiter := uuid.New()
	applicant := uuid.New()

	store := newFakeStore(testJob(recruiter,
		model.Application{ApplicantID: applicant, Status: model.StatusApplied},
	))
	store.failSave = true
	worker, cache := newTestWorker(store, &fakeScorer{}, &fakeExtractor{})

	jobs, _ := store.JobsByRecruiter(context.Background(), recruiter)
	cands := Aggregate(jobs)
	summary := worker.Run(context.Background(), cands)

	assert.Equal(t, BatchSummary{Failed: 1}, summary)
	assert.Nil(t, cands[0].Application.AI)
	_, ok := cache.Lookup(1, applicant)
	assert.False(t, ok)
}

func TestValidateScreening(t *testing.T) {
	assert.Error(t, validateScreening(nil))
	assert.Error(t, validateScreening(&model.AIScreening{Score: -1, Confidence: 50}))
	assert.Error(t, validateScreening(&model.AIScreening{Score: 101, Confidence: 50}))
	assert.Error(t, validateScreening(&model.AIScreening{Score: 50, Confidence: 101}))
	assert.NoError(t, validateScreening(&model.AIScreening{Score: 0, Confidence: 0}))
	assert.NoError(t, validateScreening(&model.AIScreening{Score: 100, Confidence: 100}))
}
