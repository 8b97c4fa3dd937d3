package screening

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"HireSight-backend/internal/email"
	"HireSight-backend/internal/model"
)

// Auto-rejection rule: the AI must be highly confident the candidate is a
// poor match. These thresholds are a hard business rule, distinct from the
// softer display categorization in aggregator.go.
const (
	autoRejectMinConfidence = 80
	autoRejectMaxScore      = 50
)

// DefaultRejectDelay spaces out consecutive auto-rejections so the outbound
// email volume stays controlled and the logs stay traceable.
const DefaultRejectDelay = 1 * time.Second

// ShouldAutoReject reports whether an application matches the auto-rejection
// rule: scored, confidence above 80, score below 50, not in a terminal
// state, and not already auto-rejected.
func ShouldAutoReject(app *model.Application) bool {
	if app.AI == nil {
		return false
	}
	if app.AI.AutoRejected {
		return false
	}
	if model.TerminalStatus(app.Status) {
		return false
	}
	return app.AI.Confidence > autoRejectMinConfidence && app.AI.Score < autoRejectMaxScore
}

// SweepSummary is the consolidated result of one auto-rejection sweep,
// reported to the recruiter once per sweep instead of per candidate.
type SweepSummary struct {
	Evaluated int `json:"evaluated"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
}

// Policy is the auto-rejection engine. It re-reads the authoritative
// document set before acting, so it never rejects based on stale in-memory
// state, and it is idempotent: re-running a sweep rejects nothing new.
type Policy struct {
	store  Store
	sender email.Sender
	delay  time.Duration
}

// NewPolicy constructs a Policy. delay < 0 selects DefaultRejectDelay;
// tests pass 0 to disable throttling.
func NewPolicy(store Store, sender email.Sender, delay time.Duration) *Policy {
	if delay < 0 {
		delay = DefaultRejectDelay
	}
	return &Policy{store: store, sender: sender, delay: delay}
}

// Sweep evaluates every application across the recruiter's postings and
// auto-rejects the matches sequentially. A failed persist logs and moves on
// to the next candidate; a failed email never rolls the status back.
func (p *Policy) Sweep(ctx context.Context, recruiterID uuid.UUID) (SweepSummary, error) {
	var summary SweepSummary

	// Authoritative re-fetch: another session may have screened or hired
	// candidates since this recruiter's view was loaded.
	jobs, err := p.store.JobsByRecruiter(ctx, recruiterID)
	if err != nil {
		return summary, fmt.Errorf("failed to load job postings for sweep: %w", err)
	}

	candidates := Aggregate(jobs)
	summary.Evaluated = len(candidates)

	first := true
	for i := range candidates {
		cand := &candidates[i]
		if !ShouldAutoReject(&cand.Application) {
			continue
		}

		if !first && p.delay > 0 {
			time.Sleep(p.delay)
		}
		first = false

		if err := p.reject(ctx, cand); err != nil {
			log.Printf("screening: failed to auto-reject applicant %s for job %d: %v",
				cand.Application.ApplicantID, cand.JobID, err)
			summary.Failed++
			continue
		}
		summary.Rejected++

		if ctx.Err() != nil {
			break
		}
	}

	return summary, nil
}

// reject transitions one application to rejected with the auto-rejection
// flag and reason, then sends the rejection email best effort.
func (p *Policy) reject(ctx context.Context, cand *Candidate) error {
	now := time.Now()
	reason := fmt.Sprintf(
		"Automatically rejected: AI screening scored %.0f/100 with %.0f%% confidence, below the configured bar",
		cand.Application.AI.Score, cand.Application.AI.Confidence,
	)

	_, err := p.store.MutateApplication(ctx, cand.JobID, cand.Application.ApplicantID, func(app *model.Application) error {
		// Re-check against the freshly read document: a concurrent session
		// may have hired or rejected the candidate since the sweep filter ran.
		if !ShouldAutoReject(app) {
			return fmt.Errorf("application no longer eligible for auto-rejection")
		}
		app.Status = model.StatusRejected
		app.AI.AutoRejected = true
		app.AI.AutoRejectedAt = &now
		app.AI.AutoRejectReason = reason
		return nil
	})
	if err != nil {
		return err
	}

	cand.Application.Status = model.StatusRejected
	cand.Application.AI.AutoRejected = true
	cand.Application.AI.AutoRejectedAt = &now
	cand.Application.AI.AutoRejectReason = reason

	if p.sender != nil {
		mailErr := p.sender.Send(ctx, email.Message{
			Template:      email.TemplateRejected,
			To:            cand.Application.Email,
			CandidateName: cand.Application.FullName,
			JobTitle:      cand.JobTitle,
			CompanyName:   cand.JobCompany,
		})
		if mailErr != nil {
			// Status change stands; notification is best effort.
			log.Printf("screening: rejection email for applicant %s failed: %v",
				cand.Application.ApplicantID, mailErr)
		}
	}

	return nil
}
