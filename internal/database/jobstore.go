package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"HireSight-backend/internal/model"
)

var (
	// ErrRevisionConflict is returned when the applications document changed
	// between read and write more times than the retry budget allows.
	ErrRevisionConflict = errors.New("job posting revision conflict")
	// ErrApplicantNotFound is returned when the applicant has no application
	// embedded in the job posting document.
	ErrApplicantNotFound = errors.New("applicant not found in job posting")
)

// casRetries bounds the read-modify-write retry loop on revision conflicts.
const casRetries = 5

// JobStore gives document-style access to job postings: fetch by id, fetch
// all for a recruiter, whole-document applicant-list updates, and a push
// subscription on changes. The screening pipeline consumes it through
// narrow interfaces so it can be faked in tests.
type JobStore struct {
	db *DBinstanceStruct
}

// NewJobStore creates a JobStore backed by the given database instance.
func NewJobStore(db *DBinstanceStruct) *JobStore {
	return &JobStore{db: db}
}

// JobByID fetches a single job posting with its embedded applications.
func (s *JobStore) JobByID(ctx context.Context, id uint) (*model.JobPosting, error) {
	var job model.JobPosting
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// JobsByRecruiter fetches every job posting owned by the given recruiter.
func (s *JobStore) JobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]model.JobPosting, error) {
	var jobs []model.JobPosting
	err := s.db.WithContext(ctx).
		Where("recruiter_id = ?", recruiterID).
		Order("post_time DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateApplications applies mutate to the full embedded applicant list and
// writes the whole document back. The write only lands when the revision
// read is still current; on a conflict the read-modify-write is retried.
// The mutate closure receives the freshly read posting alongside the list so
// callers can check preconditions (status, expiry) against the same snapshot
// the write is CAS'd on, with no separate rollback path.
func (s *JobStore) UpdateApplications(ctx context.Context, jobID uint, mutate func(*model.JobPosting, []model.Application) ([]model.Application, error)) (*model.JobPosting, error) {

	for attempt := 0; attempt < casRetries; attempt++ {
		job, err := s.JobByID(ctx, jobID)
		if err != nil {
			return nil, err
		}

		updated, err := mutate(job, append([]model.Application(nil), job.Applications...))
		if err != nil {
			return nil, err
		}

		res := s.db.WithContext(ctx).
			Model(&model.JobPosting{}).
			Where("id = ? AND revision = ?", jobID, job.Revision).
			Updates(map[string]interface{}{
				"applications": model.ApplicationList(updated),
				"revision":     job.Revision + 1,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			job.Applications = updated
			job.Revision++
			return job, nil
		}
		// Someone else wrote first, re-read and try again.
	}

	return nil, ErrRevisionConflict
}

// MutateApplication updates a single embedded application in place through
// the whole-document write path.
func (s *JobStore) MutateApplication(ctx context.Context, jobID uint, applicantID uuid.UUID, mutate func(*model.Application) error) (*model.JobPosting, error) {
	return s.UpdateApplications(ctx, jobID, func(_ *model.JobPosting, apps []model.Application) ([]model.Application, error) {
		for i := range apps {
			if apps[i].ApplicantID == applicantID {
				if err := mutate(&apps[i]); err != nil {
					return nil, err
				}
				return apps, nil
			}
		}
		return nil, ErrApplicantNotFound
	})
}

// SaveScreening persists a full AI screening result onto one application as
// a single atomic document update.
func (s *JobStore) SaveScreening(ctx context.Context, jobID uint, applicantID uuid.UUID, ai *model.AIScreening) error {
	_, err := s.MutateApplication(ctx, jobID, applicantID, func(app *model.Application) error {
		app.AI = ai
		return nil
	})
	return err
}

// Watch subscribes to job posting changes for one recruiter and invokes the
// callback with the full current set whenever any of their postings change.
// It blocks until ctx is cancelled.
func (s *JobStore) Watch(ctx context.Context, recruiterID uuid.UUID, onChange func([]model.JobPosting)) error {
	connStr := s.db.Config.getDsn()

	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("job posting listener event %d: %v", ev, err)
		}
	})
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("failed to close job posting listener: %v", err)
		}
	}()

	if err := listener.Listen("job_postings_changed"); err != nil {
		return fmt.Errorf("failed to listen on job_postings_changed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case n := <-listener.Notify:
			if n == nil || n.Extra != recruiterID.String() {
				continue
			}
			jobs, err := s.JobsByRecruiter(ctx, recruiterID)
			if err != nil {
				log.Printf("failed to refresh job postings after change: %v", err)
				continue
			}
			onChange(jobs)

		case <-time.After(90 * time.Second):
			// Keep the connection alive across quiet periods.
			go func() {
				if err := listener.Ping(); err != nil {
					log.Printf("job posting listener ping: %v", err)
				}
			}()
		}
	}
}
