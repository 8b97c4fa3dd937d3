package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"gorm.io/gorm"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"HireSight-backend/internal/model"
)

var testDB *DBinstanceStruct
var testTeardown func(context.Context, ...testcontainers.TerminateOption) error

func TestMain(m *testing.M) {
	var err error
	testTeardown, testDB, err = GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}

	m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := testTeardown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "teardown error: %v\n", err)
	}
}

func TestHealth(t *testing.T) {
	stats := testDB.Health()
	assert.Equal(t, "up", stats["status"])
	assert.NotContains(t, stats, "error")
}

func TestJobByID(t *testing.T) {
	store := NewJobStore(testDB)

	job, err := store.JobByID(context.Background(), TestJobPost1.ID)
	assert.NoError(t, err)
	assert.Equal(t, TestJobPost1.Title, job.Title)
	assert.Len(t, job.Applications, 2)

	_, err = store.JobByID(context.Background(), 999999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestJobsByRecruiter(t *testing.T) {
	store := NewJobStore(testDB)

	jobs, err := store.JobsByRecruiter(context.Background(), TestUserRecruiter1.ID)
	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, TestUserRecruiter1.ID, j.RecruiterID)
	}

	other, err := store.JobsByRecruiter(context.Background(), TestUserRecruiter2.ID)
	assert.NoError(t, err)
	assert.Len(t, other, 1)

	none, err := store.JobsByRecruiter(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateApplicationsAppendsAndBumpsRevision(t *testing.T) {
	store := NewJobStore(testDB)

	before, err := store.JobByID(context.Background(), TestJobPost2.ID)
	assert.NoError(t, err)

	applicant := uuid.New()
	job, err := store.UpdateApplications(context.Background(), TestJobPost2.ID, func(_ *model.JobPosting, apps []model.Application) ([]model.Application, error) {
		return append(apps, model.Application{
			ApplicantID: applicant,
			FullName:    "Carol Test",
			Status:      model.StatusApplied,
			AppliedAt:   time.Now(),
		}), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, before.Revision+1, job.Revision)
	assert.NotNil(t, job.FindApplication(applicant))

	// The write landed in the database, not just in memory.
	reread, err := store.JobByID(context.Background(), TestJobPost2.ID)
	assert.NoError(t, err)
	assert.NotNil(t, reread.FindApplication(applicant))
	assert.Equal(t, job.Revision, reread.Revision)
}

func TestUpdateApplicationsMutateErrorAborts(t *testing.T) {
	store := NewJobStore(testDB)

	before, err := store.JobByID(context.Background(), TestJobPost3.ID)
	assert.NoError(t, err)

	wantErr := fmt.Errorf("abort")
	_, err = store.UpdateApplications(context.Background(), TestJobPost3.ID, func(_ *model.JobPosting, apps []model.Application) ([]model.Application, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	after, err := store.JobByID(context.Background(), TestJobPost3.ID)
	assert.NoError(t, err)
	assert.Equal(t, before.Revision, after.Revision)
}

func TestMutateApplicationNotFound(t *testing.T) {
	store := NewJobStore(testDB)

	_, err := store.MutateApplication(context.Background(), TestJobPost1.ID, uuid.New(), func(app *model.Application) error {
		app.Status = model.StatusReviewed
		return nil
	})
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestSaveScreeningPersists(t *testing.T) {
	store := NewJobStore(testDB)

	// Seeded candidate 2 on job 1 is unscored.
	err := store.SaveScreening(context.Background(), TestJobPost1.ID, TestUserCandidate2.ID, &model.AIScreening{
		Score:          35,
		Confidence:     88,
		Explanation:    "Limited overlap with the required stack.",
		Recommendation: model.RecommendNotRecommended,
		ScoredAt:       time.Now(),
	})
	assert.NoError(t, err)

	job, err := store.JobByID(context.Background(), TestJobPost1.ID)
	assert.NoError(t, err)
	app := job.FindApplication(TestUserCandidate2.ID)
	assert.NotNil(t, app.AI)
	assert.Equal(t, float64(35), app.AI.Score)

	// The seeded score on candidate 1 is untouched.
	other := job.FindApplication(TestUserCandidate1.ID)
	assert.NotNil(t, other.AI)
	assert.Equal(t, float64(82), other.AI.Score)
}

func TestConcurrentUpdatesAllLand(t *testing.T) {
	store := NewJobStore(testDB)

	const writers = 4
	var wg sync.WaitGroup
	applicants := make([]uuid.UUID, writers)

	for i := 0; i < writers; i++ {
		applicants[i] = uuid.New()
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := store.UpdateApplications(context.Background(), TestJobPost3.ID, func(_ *model.JobPosting, apps []model.Application) ([]model.Application, error) {
				return append(apps, model.Application{
					ApplicantID: id,
					Status:      model.StatusApplied,
					AppliedAt:   time.Now(),
				}), nil
			})
			assert.NoError(t, err)
		}(applicants[i])
	}
	wg.Wait()

	// Every concurrent append survived the revision CAS retries.
	job, err := store.JobByID(context.Background(), TestJobPost3.ID)
	assert.NoError(t, err)
	for _, id := range applicants {
		assert.NotNil(t, job.FindApplication(id), "application %s lost in concurrent update", id)
	}
}

func TestWatchDeliversChangeNotifications(t *testing.T) {
	store := NewJobStore(testDB)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	changes := make(chan int, 4)
	go func() {
		_ = store.Watch(ctx, TestUserRecruiter2.ID, func(jobs []model.JobPosting) {
			changes <- len(jobs)
		})
	}()

	// Give the listener a moment to subscribe before writing.
	time.Sleep(time.Second)

	// An identity update still bumps the revision and fires the trigger.
	_, err := store.UpdateApplications(ctx, TestJobPost3.ID, func(_ *model.JobPosting, apps []model.Application) ([]model.Application, error) {
		return apps, nil
	})
	assert.NoError(t, err)

	select {
	case n := <-changes:
		assert.GreaterOrEqual(t, n, 1)
	case <-time.After(10 * time.Second):
		t.Fatal("no change notification received")
	}
}
