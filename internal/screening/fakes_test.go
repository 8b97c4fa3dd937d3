package screening

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"HireSight-backend/internal/email"
	"HireSight-backend/internal/model"
)

// fakeStore is an in-memory Store backed by a map of job postings.
type fakeStore struct {
	mu   sync.Mutex
	jobs map[uint]*model.JobPosting

	failSave bool
}

func newFakeStore(jobs ...model.JobPosting) *fakeStore {
	s := &fakeStore{jobs: make(map[uint]*model.JobPosting)}
	for i := range jobs {
		j := jobs[i]
		s.jobs[j.ID] = &j
	}
	return s
}

func (s *fakeStore) JobsByRecruiter(_ context.Context, recruiterID uuid.UUID) ([]model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.JobPosting
	for _, j := range s.jobs {
		if j.RecruiterID == recruiterID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveScreening(_ context.Context, jobID uint, applicantID uuid.UUID, ai *model.AIScreening) error {
	if s.failSave {
		return errors.New("save failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	app := job.FindApplication(applicantID)
	if app == nil {
		return errors.New("applicant not found")
	}
	app.AI = ai
	return nil
}

func (s *fakeStore) MutateApplication(_ context.Context, jobID uint, applicantID uuid.UUID, mutate func(*model.Application) error) (*model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, errors.New("job not found")
	}
	app := job.FindApplication(applicantID)
	if app == nil {
		return nil, errors.New("applicant not found")
	}
	if err := mutate(app); err != nil {
		return nil, err
	}
	copied := *job
	return &copied, nil
}

// application reads back one stored application for assertions.
func (s *fakeStore) application(jobID uint, applicantID uuid.UUID) *model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	app := job.FindApplication(applicantID)
	if app == nil {
		return nil
	}
	copied := *app
	return &copied
}

// fakeScorer returns a canned result per applicant, counting calls. When
// block is set, Score waits until release is closed.
type fakeScorer struct {
	mu      sync.Mutex
	calls   int
	results map[uuid.UUID]*model.AIScreening
	err     error

	block   bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeScorer) Score(_ context.Context, req ScoreRequest) (*model.AIScreening, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block {
		f.started <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[req.Candidate.ApplicantID]; ok {
		copied := *res
		return &copied, nil
	}
	return &model.AIScreening{Score: 75, Confidence: 85, Recommendation: model.RecommendGoodMatch}, nil
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeExtractor returns fixed text or an error.
type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeSender records sent messages.
type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.Message(nil), f.sent...)
}
