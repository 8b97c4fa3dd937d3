// Command watch runs the screening pipeline continuously: it subscribes to
// job posting change notifications and triggers a scoring batch plus
// auto-rejection sweep whenever a recruiter's postings change. One watcher
// goroutine per recruiter.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"HireSight-backend/internal/ai"
	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/extract"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/screening"
)

func main() {
	recruiterFlag := flag.String("recruiter", "", "only watch this recruiter id")
	flag.Parse()

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	aiClient, err := ai.NewClientFromEnv()
	if err != nil {
		log.Fatal("AI screening is required for the watcher: ", err)
	}

	var mailer email.Sender
	if m, err := email.NewMailerFromEnv(); err != nil {
		log.Printf("Mail delivery disabled: %s", err)
	} else {
		mailer = m
	}

	store := database.NewJobStore(db)
	worker := screening.NewWorker(store, aiClient, extract.NewResumeExtractor(),
		screening.NewGate(), screening.NewScoreCache(), screening.DefaultScoreDelay)
	policy := screening.NewPolicy(store, mailer, screening.DefaultRejectDelay)

	var recruiters []uuid.UUID
	if *recruiterFlag != "" {
		id, err := uuid.Parse(*recruiterFlag)
		if err != nil {
			log.Fatal("invalid recruiter id: ", err)
		}
		recruiters = append(recruiters, id)
	} else {
		var users []model.User
		if err := db.Where("role = ?", model.RoleRecruiter).Find(&users).Error; err != nil {
			log.Fatal("failed to list recruiters: ", err)
		}
		for _, u := range users {
			recruiters = append(recruiters, u.ID)
		}
	}
	if len(recruiters) == 0 {
		log.Fatal("no recruiters to watch")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Print("Shutting down")
		cancel()
	}()

	var wg sync.WaitGroup
	for _, id := range recruiters {
		wg.Add(1)
		go func(recruiterID uuid.UUID) {
			defer wg.Done()
			watchRecruiter(ctx, store, worker, policy, recruiterID)
		}(id)
	}

	log.Printf("watching %d recruiters", len(recruiters))
	wg.Wait()
}

// watchRecruiter bridges the store's change subscription into the runner's
// event loop. A buffered channel of one coalesces bursts of notifications.
func watchRecruiter(ctx context.Context, store *database.JobStore, worker *screening.Worker, policy *screening.Policy, recruiterID uuid.UUID) {
	runner := screening.NewRunner(store, worker, policy)
	events := make(chan struct{}, 1)

	go runner.Consume(ctx, recruiterID, events)

	// Catch up on anything that changed while the watcher was down.
	events <- struct{}{}

	err := store.Watch(ctx, recruiterID, func([]model.JobPosting) {
		select {
		case events <- struct{}{}:
		default:
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("watch for recruiter %s ended: %v", recruiterID, err)
	}
}
