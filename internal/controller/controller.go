// Package controller provides HTTP handlers for job, application, and
// screening related operations.
package controller

import (
	"sync"

	"github.com/google/uuid"

	"HireSight-backend/internal/ai"
	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/screening"
	"HireSight-backend/internal/storage"
)

// Controller holds the database connection and the pipeline collaborators
// shared by all handlers.
type Controller struct {
	DB     *database.DBinstanceStruct
	Store  *database.JobStore
	Worker *screening.Worker
	Policy *screening.Policy
	Cache  *screening.ScoreCache
	AI     *ai.Client
	Mailer email.Sender
	Files  *storage.CloudStorageClient

	mu      sync.Mutex
	runners map[uuid.UUID]*screening.Runner
}

// NewController creates a Controller with the provided collaborators. AI,
// Mailer, and Files may be nil when the corresponding integration is not
// configured; the affected handlers answer 503 in that case.
func NewController(
	db *database.DBinstanceStruct,
	store *database.JobStore,
	worker *screening.Worker,
	policy *screening.Policy,
	cache *screening.ScoreCache,
	aiClient *ai.Client,
	mailer email.Sender,
	files *storage.CloudStorageClient,
) *Controller {
	return &Controller{
		DB:      db,
		Store:   store,
		Worker:  worker,
		Policy:  policy,
		Cache:   cache,
		AI:      aiClient,
		Mailer:  mailer,
		Files:   files,
		runners: make(map[uuid.UUID]*screening.Runner),
	}
}

// runnerFor returns the per-recruiter pipeline runner, creating it on first
// use. One runner per recruiter means one run-guard per recruiter, so two
// recruiters never block each other.
func (ct *Controller) runnerFor(recruiterID uuid.UUID) *screening.Runner {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	r, ok := ct.runners[recruiterID]
	if !ok {
		r = screening.NewRunner(ct.Store, ct.Worker, ct.Policy)
		ct.runners[recruiterID] = r
	}
	return r
}
