package controller

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"HireSight-backend/internal/ai"
	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// offerDraftRequest carries the structured terms for an offer letter draft.
type offerDraftRequest struct {
	Salary     string `json:"salary"`
	StartDate  string `json:"start_date"`
	ExtraTerms string `json:"extra_terms"`
}

// GenerateOffer drafts an offer letter body through the AI collaborator
// without storing anything. The recruiter reviews and edits the draft, then
// sends it through SendOffer.
// @Summary Generate an offer letter draft for a candidate
// @Tags Offer
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param applicant path string true "Applicant user id"
// @Param Terms body offerDraftRequest false "Offer terms"
// @Success 200 {object} map[string]string "letter_body"
// @Failure 404 {object} utilities.ErrorResponse "Job posting or applicant not found"
// @Failure 502 {object} utilities.ErrorResponse "AI letter generation failed"
// @Failure 503 {object} utilities.ErrorResponse "AI is not configured"
// @Router /candidates/{id}/{applicant}/offer/draft [post]
func (ct *Controller) GenerateOffer(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if ct.AI == nil {
		c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{Error: "AI letter generation is not configured"})
		return
	}

	jobID, applicantID, ok := ct.candidatePathParams(c, user)
	if !ok {
		return
	}

	req := offerDraftRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Invalid offer terms: %s", err.Error()),
			})
			return
		}
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

	salary := req.Salary
	if salary == "" {
		salary = job.Salary
	}

	letter, err := ct.AI.GenerateOfferLetter(c.Request.Context(), ai.OfferRequest{
		CandidateName: app.FullName,
		JobTitle:      job.Title,
		CompanyName:   job.Company,
		Salary:        salary,
		StartDate:     req.StartDate,
		ExtraTerms:    req.ExtraTerms,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate offer letter: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"letter_body": letter})
}

// offerSendRequest is the final offer the recruiter commits to.
type offerSendRequest struct {
	Salary     string `json:"salary"`
	StartDate  string `json:"start_date"`
	LetterBody string `json:"letter_body" binding:"required"`
}

// SendOffer stores the offer on the application and emails the letter to
// the candidate.
// @Summary Send an offer letter to a candidate
// @Tags Offer
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param applicant path string true "Applicant user id"
// @Param Offer body offerSendRequest true "The offer to send"
// @Success 200 {object} model.Application
// @Failure 404 {object} utilities.ErrorResponse "Job posting or applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Offer already sent or application terminal"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/{applicant}/offer [post]
func (ct *Controller) SendOffer(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobID, applicantID, ok := ct.candidatePathParams(c, user)
	if !ok {
		return
	}

	req := offerSendRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid offer: %s", err.Error()),
		})
		return
	}

	current, err := ct.Store.JobByID(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	var updated model.Application
	job, err := ct.Store.MutateApplication(c.Request.Context(), jobID, applicantID, func(app *model.Application) error {
		if app.Status == model.StatusRejected {
			return errTerminalStatus
		}
		if app.Offer != nil {
			return errOfferExists
		}
		app.Offer = &model.OfferDetails{
			Position:   current.Title,
			Salary:     req.Salary,
			StartDate:  req.StartDate,
			LetterBody: req.LetterBody,
			Status:     model.OfferSent,
			SentAt:     time.Now(),
		}
		updated = *app
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errTerminalStatus):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Cannot send an offer to a rejected application"})
		return
	case errors.Is(err, errOfferExists):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "An offer has already been sent to this candidate"})
		return
	case errors.Is(err, database.ErrApplicantNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found in job posting"})
		return
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to send offer: %s", err.Error()),
		})
		return
	}

	ct.notifyCandidate(c.Request.Context(), job, &updated, email.TemplateOfferLetter)

	c.JSON(http.StatusOK, updated)
}

// errOfferExists guards against sending a second offer to the same candidate.
var errOfferExists = errors.New("offer already sent")

// offerResponseRequest is the candidate's answer to an offer.
type offerResponseRequest struct {
	Response string `json:"response" binding:"required,oneof=accepted declined"`
}

// RespondOffer lets the requesting candidate accept or decline an offer on
// their own application. Accepting moves the application to hired; declining
// moves it to rejected. The recruiter is notified by email either way.
// @Summary Accept or decline an offer
// @Tags Offer
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param Response body offerResponseRequest true "accepted or declined"
// @Success 200 {object} model.Application
// @Failure 404 {object} utilities.ErrorResponse "No offer on this application"
// @Failure 409 {object} utilities.ErrorResponse "Offer already responded to"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id}/offer/respond [post]
func (ct *Controller) RespondOffer(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobID, err := parseJobID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := offerResponseRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid response: %s", err.Error()),
		})
		return
	}

	var updated model.Application
	job, err := ct.Store.MutateApplication(c.Request.Context(), jobID, user.ID, func(app *model.Application) error {
		if app.Offer == nil {
			return errNoOffer
		}
		if app.Offer.Status != model.OfferSent {
			return errOfferResponded
		}
		now := time.Now()
		app.Offer.RespondedAt = &now
		if req.Response == "accepted" {
			app.Offer.Status = model.OfferAccepted
			app.Status = model.StatusHired
		} else {
			app.Offer.Status = model.OfferDeclined
			app.Status = model.StatusRejected
		}
		updated = *app
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errNoOffer):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "No offer on this application"})
		return
	case errors.Is(err, errOfferResponded):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "This offer has already been responded to"})
		return
	case errors.Is(err, database.ErrApplicantNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "You have not applied to this job posting"})
		return
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to record offer response: %s", err.Error()),
		})
		return
	}

	ct.notifyRecruiter(c, job, &updated)

	c.JSON(http.StatusOK, updated)
}

var (
	errNoOffer        = errors.New("no offer on application")
	errOfferResponded = errors.New("offer already responded to")
)

// notifyRecruiter emails the recruiter about the candidate's offer response.
// Best effort only.
func (ct *Controller) notifyRecruiter(c *gin.Context, job *model.JobPosting, app *model.Application) {
	if ct.Mailer == nil {
		return
	}

	var owner model.User
	if err := ct.DB.Where("id = ?", job.RecruiterID).First(&owner).Error; err != nil {
		log.Printf("failed to load recruiter %s for offer notification: %v", job.RecruiterID, err)
		return
	}

	tmpl := email.TemplateOfferAccepted
	if app.Offer.Status == model.OfferDeclined {
		tmpl = email.TemplateOfferDeclined
	}

	msg := email.Message{
		Template:      tmpl,
		To:            owner.Username,
		CandidateName: app.FullName,
		JobTitle:      job.Title,
		CompanyName:   job.Company,
		Offer:         app.Offer,
	}
	if err := ct.Mailer.Send(c.Request.Context(), msg); err != nil {
		log.Printf("failed to send %s email to %s: %v", tmpl, owner.Username, err)
	}
}
