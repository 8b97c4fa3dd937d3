package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// interviewRequest carries the interview details for one candidate.
type interviewRequest struct {
	Mode        string `json:"mode" binding:"required,oneof=google-meet zoom phone on-site"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	MeetingLink string `json:"meeting_link"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

// validateContact checks the mode-specific contact field is present.
func (r *interviewRequest) validateContact() error {
	switch r.Mode {
	case "google-meet", "zoom":
		if r.MeetingLink == "" {
			return fmt.Errorf("meeting_link is required for %s interviews", r.Mode)
		}
	case "phone":
		if r.PhoneNumber == "" {
			return errors.New("phone_number is required for phone interviews")
		}
	case "on-site":
		if r.Location == "" {
			return errors.New("location is required for on-site interviews")
		}
	}
	return nil
}

// ScheduleInterview attaches interview details to one application, moves it
// to interview_scheduled, and emails the candidate.
// @Summary Schedule an interview with a candidate
// @Tags Candidates
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param applicant path string true "Applicant user id"
// @Param Interview body interviewRequest true "Interview details"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Missing mode-specific contact detail"
// @Failure 404 {object} utilities.ErrorResponse "Job posting or applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Application is in a terminal status"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/{applicant}/interview [post]
func (ct *Controller) ScheduleInterview(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobID, applicantID, ok := ct.candidatePathParams(c, user)
	if !ok {
		return
	}

	req := interviewRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid interview details: %s", err.Error()),
		})
		return
	}
	if err := req.validateContact(); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var updated model.Application
	job, err := ct.Store.MutateApplication(c.Request.Context(), jobID, applicantID, func(app *model.Application) error {
		if model.TerminalStatus(app.Status) {
			return errTerminalStatus
		}
		app.Interview = &model.InterviewDetails{
			Mode:        req.Mode,
			Date:        req.Date,
			Time:        req.Time,
			MeetingLink: req.MeetingLink,
			PhoneNumber: req.PhoneNumber,
			Location:    req.Location,
			Notes:       req.Notes,
			ScheduledAt: time.Now(),
		}
		app.Status = model.StatusInterviewScheduled
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
			Error: fmt.Sprintf("Failed to schedule interview: %s", err.Error()),
		})
		return
	}

	ct.notifyCandidate(c.Request.Context(), job, &updated, email.TemplateInterview)

	c.JSON(http.StatusOK, updated)
}
