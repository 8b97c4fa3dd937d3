// Package screening implements the AI-assisted candidate screening and
// auto-rejection pipeline: aggregate a recruiter's applicants, score the
// unscored ones through the AI collaborator, and sweep the scored set
// against the auto-rejection rule.
package screening

import (
	"sort"

	"github.com/google/uuid"

	"HireSight-backend/internal/model"
)

// Candidate is one application flattened together with the job metadata the
// scorer and the candidate list view need.
type Candidate struct {
	JobID         uint     `json:"job_id"`
	JobTitle      string   `json:"job_title"`
	JobCompany    string   `json:"job_company"`
	JobDepartment string   `json:"job_department"`
	JobSkills     []string `json:"job_skills"`
	JobExpLvl     string   `json:"job_exp_lvl"`
	JobLocation   string   `json:"job_location"`
	JobType       string   `json:"job_type"`
	JobSalary     string   `json:"job_salary"`
	JobReq        string   `json:"job_req"`
	JobDesc       string   `json:"job_desc"`

	Application model.Application `json:"application"`
}

// Aggregate flattens the applications of every given job posting into one
// list. It is a pure projection: applications with a missing applicant id
// are skipped, jobs without applications contribute nothing, and the result
// is sorted by AI score descending (unscored below any scored value) with
// application time descending as tiebreak.
func Aggregate(jobs []model.JobPosting) []Candidate {
	var out []Candidate

	for i := range jobs {
		job := &jobs[i]
		for _, app := range job.Applications {
			if app.ApplicantID == uuid.Nil {
				// Malformed record, skip rather than crash downstream.
				continue
			}
			out = append(out, Candidate{
				JobID:         job.ID,
				JobTitle:      job.Title,
				JobCompany:    job.Company,
				JobDepartment: job.Department,
				JobSkills:     job.Skills,
				JobExpLvl:     job.ExpLvl,
				JobLocation:   job.Location,
				JobType:       job.Type,
				JobSalary:     job.Salary,
				JobReq:        job.Req,
				JobDesc:       job.Desc,
				Application:   app,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := sortScore(&out[i].Application), sortScore(&out[j].Application)
		if si != sj {
			return si > sj
		}
		return out[i].Application.AppliedAt.After(out[j].Application.AppliedAt)
	})

	return out
}

// sortScore maps unscored applications below every scored one.
func sortScore(app *model.Application) float64 {
	if app.AI == nil {
		return -1
	}
	return app.AI.Score
}

// recommendedMinScore is the display categorization threshold. It is a
// different business rule from the auto-rejection rule in policy.go and the
// two must stay separate.
const recommendedMinScore = 60

// Recommended reports whether an application clears the display threshold
// used by the "recommended" candidate filter.
func Recommended(app *model.Application) bool {
	return app.AI != nil && app.AI.Score >= recommendedMinScore
}
