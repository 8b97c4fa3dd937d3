package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/screening"
	"HireSight-backend/internal/utilities"
)

// ListCandidates aggregates every application across the requesting
// recruiter's job postings into one flat list, newest and highest-scored
// first, with optional filtering.
// @Summary List candidates across all my job postings
// @Tags Candidates
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job query int false "Only candidates for this job posting"
// @Param status query string false "Only candidates in this application status"
// @Param search query string false "Substring match on candidate name, case insensitive"
// @Param recommended query boolean false "Only candidates at or above the recommended AI score"
// @Param unscreened query boolean false "Only candidates without an AI score"
// @Success 200 {array} screening.Candidate
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates [get]
func (ct *Controller) ListCandidates(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobs, err := ct.Store.JobsByRecruiter(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch job postings: %s", err.Error()),
		})
		return
	}

	candidates := screening.Aggregate(jobs)

	if jobFilter := c.Query("job"); jobFilter != "" {
		id, err := strconv.ParseUint(jobFilter, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid job filter"})
			return
		}
		candidates = filterCandidates(candidates, func(cand *screening.Candidate) bool {
			return cand.JobID == uint(id)
		})
	}
	if status := c.Query("status"); status != "" {
		candidates = filterCandidates(candidates, func(cand *screening.Candidate) bool {
			return cand.Application.Status == status
		})
	}
	if search := c.Query("search"); search != "" {
		needle := strings.ToLower(search)
		candidates = filterCandidates(candidates, func(cand *screening.Candidate) bool {
			return strings.Contains(strings.ToLower(cand.Application.FullName), needle)
		})
	}
	if recommended, _ := strconv.ParseBool(c.Query("recommended")); recommended {
		candidates = filterCandidates(candidates, func(cand *screening.Candidate) bool {
			return screening.Recommended(&cand.Application)
		})
	}
	if unscreened, _ := strconv.ParseBool(c.Query("unscreened")); unscreened {
		candidates = filterCandidates(candidates, func(cand *screening.Candidate) bool {
			return !cand.Application.Screened()
		})
	}

	if candidates == nil {
		candidates = []screening.Candidate{}
	}
	c.JSON(http.StatusOK, candidates)
}

func filterCandidates(in []screening.Candidate, keep func(*screening.Candidate) bool) []screening.Candidate {
	out := in[:0]
	for i := range in {
		if keep(&in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}

// statusUpdateRequest carries the target application status.
type statusUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=applied reviewed shortlisted interview_scheduled hired rejected"`
}

// statusTemplates maps a manual status transition to the notification email
// sent to the candidate. Transitions without an entry send nothing.
var statusTemplates = map[string]email.TemplateType{
	model.StatusShortlisted: email.TemplateShortlisted,
	model.StatusRejected:    email.TemplateRejected,
	model.StatusHired:       email.TemplateHired,
}

// UpdateCandidateStatus is the manual counterpart of the auto-rejection
// sweep: a recruiter moves one application to a new status. Terminal
// applications stay terminal.
// @Summary Update one candidate's application status
// @Tags Candidates
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param applicant path string true "Applicant user id"
// @Param Status body statusUpdateRequest true "Target status"
// @Success 200 {object} model.Application
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job posting or applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Application is in a terminal status"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/{applicant}/status [patch]
func (ct *Controller) UpdateCandidateStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobID, applicantID, ok := ct.candidatePathParams(c, user)
	if !ok {
		return
	}

	req := statusUpdateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid status: %s", err.Error()),
		})
		return
	}

	var updated model.Application
	job, err := ct.Store.MutateApplication(c.Request.Context(), jobID, applicantID, func(app *model.Application) error {
		if model.TerminalStatus(app.Status) {
			return errTerminalStatus
		}
		app.Status = req.Status
		updated = *app
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errTerminalStatus):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Application is already in a terminal status"})
		return
	case errors.Is(err, database.ErrApplicantNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found in job posting"})
		return
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update application status: %s", err.Error()),
		})
		return
	}

	if tmpl, send := statusTemplates[req.Status]; send {
		ct.notifyCandidate(c.Request.Context(), job, &updated, tmpl)
	}

	c.JSON(http.StatusOK, updated)
}

// errTerminalStatus aborts a status mutation on hired/rejected applications.
var errTerminalStatus = errors.New("application status is terminal")

// notifyCandidate sends a status notification email. Failures are logged and
// never fail the request: the status change already happened.
func (ct *Controller) notifyCandidate(ctx context.Context, job *model.JobPosting, app *model.Application, tmpl email.TemplateType) {
	if ct.Mailer == nil {
		return
	}

	msg := email.Message{
		Template:      tmpl,
		To:            app.Email,
		CandidateName: app.FullName,
		JobTitle:      job.Title,
		CompanyName:   job.Company,
		Interview:     app.Interview,
		Offer:         app.Offer,
	}

	var recruiter model.RecruiterUser
	if err := ct.DB.Where("user_id = ?", job.RecruiterID).First(&recruiter).Error; err == nil {
		if recruiter.ReplyTo != nil {
			msg.ReplyTo = *recruiter.ReplyTo
		}
		if msg.CompanyName == "" {
			msg.CompanyName = recruiter.CompanyName
		}
	}

	if err := ct.Mailer.Send(ctx, msg); err != nil {
		log.Printf("failed to send %s email to %s: %v", tmpl, app.Email, err)
	}
}

// candidatePathParams parses the :id and :applicant path params and verifies
// the requesting recruiter owns the posting. It writes the error response
// itself and returns ok=false on any failure.
func (ct *Controller) candidatePathParams(c *gin.Context, user model.User) (uint, uuid.UUID, bool) {
	jobID, err := parseJobID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return 0, uuid.Nil, false
	}

	applicantID, err := uuid.Parse(c.Param("applicant"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid applicant id"})
		return 0, uuid.Nil, false
	}

	job, err := ct.Store.JobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
			})
		}
		return 0, uuid.Nil, false
	}

	if job.RecruiterID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this job posting"})
		return 0, uuid.Nil, false
	}

	return jobID, applicantID, true
}

// ScreenAll runs the full screening pipeline for the requesting recruiter:
// score every unscored candidate, then sweep the scored set against the
// auto-rejection rule. Only one run per recruiter at a time.
// @Summary Screen all unscored candidates and apply auto-rejection
// @Tags Candidates
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} screening.RunReport
// @Failure 409 {object} utilities.ErrorResponse "A run is already in progress"
// @Failure 503 {object} utilities.ErrorResponse "AI screening is not configured"
// @Router /candidates/screen [post]
func (ct *Controller) ScreenAll(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if ct.Worker == nil {
		c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{Error: "AI screening is not configured"})
		return
	}

	report, err := ct.runnerFor(user.ID).Run(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, screening.ErrRunInProgress) {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "A screening run is already in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Screening run failed: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ScoreCandidate scores a single candidate on demand. Unlike the batch run,
// a scoring failure here is surfaced to the caller.
// @Summary Score one candidate
// @Tags Candidates
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param applicant path string true "Applicant user id"
// @Success 200 {object} model.Application
// @Failure 404 {object} utilities.ErrorResponse "Job posting or applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Scoring already in progress for this candidate"
// @Failure 502 {object} utilities.ErrorResponse "AI scoring failed"
// @Failure 503 {object} utilities.ErrorResponse "AI screening is not configured"
// @Router /candidates/{id}/{applicant}/score [post]
func (ct *Controller) ScoreCandidate(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if ct.Worker == nil {
		c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{Error: "AI screening is not configured"})
		return
	}

	jobID, applicantID, ok := ct.candidatePathParams(c, user)
	if !ok {
		return
	}

	job, err := ct.Store.JobByID(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	app := job.FindApplication(applicantID)
	if app == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found in job posting"})
		return
	}

	cands := screening.Aggregate([]model.JobPosting{*job})
	var target *screening.Candidate
	for i := range cands {
		if cands[i].Application.ApplicantID == applicantID {
			target = &cands[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found in job posting"})
		return
	}

	if err := ct.Worker.ScoreOne(c.Request.Context(), target); err != nil {
		c.JSON(http.StatusBadGateway, utilities.ErrorResponse{
			Error: fmt.Sprintf("Scoring failed: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, target.Application)
}

// CandidateScore returns one candidate's AI score for display. The score
// cache answers warm requests without a second document fetch; the persisted
// application stays the source of truth and refills the cache on a miss.
// @Summary Get one candidate's AI score
// @Tags Candidates
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param applicant path string true "Applicant user id"
// @Success 200 {object} screening.CachedScore
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found or not scored yet"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/{applicant}/score [get]
func (ct *Controller) CandidateScore(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobID, applicantID, ok := ct.candidatePathParams(c, user)
	if !ok {
		return
	}

	if score, hit := ct.Cache.Lookup(jobID, applicantID); hit {
		c.JSON(http.StatusOK, score)
		return
	}

	job, err := ct.Store.JobByID(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	app := job.FindApplication(applicantID)
	if app == nil {
		ct.Cache.Invalidate(jobID, applicantID)
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found in job posting"})
		return
	}
	if app.AI == nil {
		// Persisted record disagrees with anything cached: drop it.
		ct.Cache.Invalidate(jobID, applicantID)
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Candidate has not been scored yet"})
		return
	}

	score := screening.CachedScore{
		Score:      app.AI.Score,
		Confidence: app.AI.Confidence,
		ScoredAt:   app.AI.ScoredAt,
	}
	ct.Cache.Put(jobID, applicantID, score)
	c.JSON(http.StatusOK, score)
}

// AutoRejectSweep runs the auto-rejection policy alone, without scoring
// anything first. Useful after the threshold configuration changes.
// @Summary Sweep scored candidates against the auto-rejection rule
// @Tags Candidates
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} screening.SweepSummary
// @Failure 500 {object} utilities.ErrorResponse "Sweep failed"
// @Router /candidates/auto-reject [post]
func (ct *Controller) AutoRejectSweep(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	summary, err := ct.Policy.Sweep(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Auto-rejection sweep failed: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ScreeningState reports whether a screening run is currently active for
// the requesting recruiter.
// @Summary Get the state of my screening pipeline
// @Tags Candidates
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} map[string]string
// @Router /candidates/screen/state [get]
func (ct *Controller) ScreeningState(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": string(ct.runnerFor(user.ID).State())})
}
