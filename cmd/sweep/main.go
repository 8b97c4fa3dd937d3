// Command sweep runs the auto-rejection policy once over every recruiter's
// scored candidates, without scoring anything new. Intended for cron.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/screening"
)

func main() {
	recruiterFlag := flag.String("recruiter", "", "only sweep this recruiter id")
	delayFlag := flag.Duration("delay", screening.DefaultRejectDelay, "pause between rejections")
	timeoutFlag := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	var mailer email.Sender
	if m, err := email.NewMailerFromEnv(); err != nil {
		log.Printf("Mail delivery disabled: %s", err)
	} else {
		mailer = m
	}

	store := database.NewJobStore(db)
	policy := screening.NewPolicy(store, mailer, *delayFlag)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

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

	var rejected, failed int
	for _, id := range recruiters {
		summary, err := policy.Sweep(ctx, id)
		if err != nil {
			log.Printf("sweep failed for recruiter %s: %v", id, err)
			continue
		}
		rejected += summary.Rejected
		failed += summary.Failed
		if summary.Evaluated > 0 {
			log.Printf("recruiter %s: evaluated %d, rejected %d, failed %d",
				id, summary.Evaluated, summary.Rejected, summary.Failed)
		}
	}

	log.Printf("sweep complete: %d recruiters, %d rejected, %d failed", len(recruiters), rejected, failed)
}
