package screening

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"HireSight-backend/internal/model"
)

// Store is the slice of the job document store the pipeline needs.
type Store interface {
	JobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]model.JobPosting, error)
	SaveScreening(ctx context.Context, jobID uint, applicantID uuid.UUID, ai *model.AIScreening) error
	MutateApplication(ctx context.Context, jobID uint, applicantID uuid.UUID, mutate func(*model.Application) error) (*model.JobPosting, error)
}

// ScoreRequest is everything the AI scoring collaborator receives for one
// candidate: structured candidate profile, structured job profile, and the
// extracted resume text (possibly empty).
type ScoreRequest struct {
	Candidate  model.Application
	Job        JobProfile
	ResumeText string
}

// JobProfile is the job side of a scoring request.
type JobProfile struct {
	Title      string
	Company    string
	Department string
	Skills     []string
	ExpLvl     string
	Location   string
	Type       string
	Salary     string
	Req        string
	Desc       string
}

// Scorer is the external AI scoring collaborator.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) (*model.AIScreening, error)
}

// Extractor is the external resume-text-extraction collaborator. Extraction
// failure must never abort scoring.
type Extractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// DefaultScoreDelay is the pause between consecutive scoring calls in one
// batch. It is a deliberate rate limit toward the AI collaborator, not a
// performance knob.
const DefaultScoreDelay = 1500 * time.Millisecond

// BatchSummary reports the outcome of one screening batch.
type BatchSummary struct {
	Scored  int `json:"scored"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Worker scores unscored candidates one at a time: extract resume text
// (best effort), call the scorer once, persist the full result, then mirror
// it into the in-memory candidate and the display cache.
type Worker struct {
	store     Store
	scorer    Scorer
	extractor Extractor
	gate      *Gate
	cache     *ScoreCache
	delay     time.Duration
}

// NewWorker constructs a Worker. delay < 0 selects DefaultScoreDelay; tests
// pass 0 to disable throttling.
func NewWorker(store Store, scorer Scorer, extractor Extractor, gate *Gate, cache *ScoreCache, delay time.Duration) *Worker {
	if delay < 0 {
		delay = DefaultScoreDelay
	}
	return &Worker{
		store:     store,
		scorer:    scorer,
		extractor: extractor,
		gate:      gate,
		cache:     cache,
		delay:     delay,
	}
}

// Run processes candidates sequentially in list order. Already-scored and
// in-flight candidates are skipped, a failed call leaves its candidate
// unscored and retryable on the next run, and the batch never aborts on a
// single failure.
func (w *Worker) Run(ctx context.Context, candidates []Candidate) BatchSummary {
	var summary BatchSummary

	for i := range candidates {
		cand := &candidates[i]

		if !NeedsScoring(&cand.Application) {
			summary.Skipped++
			continue
		}
		if !w.gate.TryBegin(cand.JobID, cand.Application.ApplicantID) {
			summary.Skipped++
			continue
		}

		err := w.scoreLocked(ctx, cand)
		w.gate.Finish(cand.JobID, cand.Application.ApplicantID)

		if err != nil {
			log.Printf("screening: failed to score applicant %s for job %d: %v",
				cand.Application.ApplicantID, cand.JobID, err)
			summary.Failed++
		} else {
			summary.Scored++
		}

		if ctx.Err() != nil {
			break
		}
		if w.delay > 0 && i < len(candidates)-1 {
			time.Sleep(w.delay)
		}
	}

	return summary
}

// ScoreOne scores a single candidate on explicit recruiter request. Unlike
// the batch path the error is returned so the handler can surface it.
func (w *Worker) ScoreOne(ctx context.Context, cand *Candidate) error {
	if !NeedsScoring(&cand.Application) {
		return nil
	}
	if !w.gate.TryBegin(cand.JobID, cand.Application.ApplicantID) {
		return fmt.Errorf("scoring already in progress for this candidate")
	}
	defer w.gate.Finish(cand.JobID, cand.Application.ApplicantID)

	return w.scoreLocked(ctx, cand)
}

// scoreLocked does one extract-score-persist cycle. Callers hold the gate.
func (w *Worker) scoreLocked(ctx context.Context, cand *Candidate) error {

	resumeText := ""
	if cand.Application.ResumeURL != "" {
		text, err := w.extractor.ExtractText(ctx, cand.Application.ResumeURL)
		if err != nil {
			// Non-fatal: score on structured profile fields alone.
			log.Printf("screening: resume extraction failed for applicant %s: %v",
				cand.Application.ApplicantID, err)
		} else {
			resumeText = text
		}
	}

	result, err := w.scorer.Score(ctx, ScoreRequest{
		Candidate: cand.Application,
		Job: JobProfile{
			Title:      cand.JobTitle,
			Company:    cand.JobCompany,
			Department: cand.JobDepartment,
			Skills:     cand.JobSkills,
			ExpLvl:     cand.JobExpLvl,
			Location:   cand.JobLocation,
			Type:       cand.JobType,
			Salary:     cand.JobSalary,
			Req:        cand.JobReq,
			Desc:       cand.JobDesc,
		},
		ResumeText: resumeText,
	})
	if err != nil {
		return err
	}
	if err := validateScreening(result); err != nil {
		return err
	}

	// Persist first, mirror locally only after the write lands.
	if err := w.store.SaveScreening(ctx, cand.JobID, cand.Application.ApplicantID, result); err != nil {
		return fmt.Errorf("failed to persist screening result: %w", err)
	}

	cand.Application.AI = result
	w.cache.Put(cand.JobID, cand.Application.ApplicantID, CachedScore{
		Score:      result.Score,
		Confidence: result.Confidence,
		ScoredAt:   result.ScoredAt,
	})

	return nil
}

// validateScreening rejects malformed collaborator responses before they
// reach the document store. Score and confidence travel together.
func validateScreening(ai *model.AIScreening) error {
	if ai == nil {
		return fmt.Errorf("scorer returned empty result")
	}
	if ai.Score < 0 || ai.Score > 100 {
		return fmt.Errorf("score %v out of range", ai.Score)
	}
	if ai.Confidence < 0 || ai.Confidence > 100 {
		return fmt.Errorf("confidence %v out of range", ai.Confidence)
	}
	return nil
}
