package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// applyRequest is the candidate-supplied part of an application. Everything
// else on the embedded document is snapshotted from the candidate profile.
type applyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

// ApplyHandler submits the requesting candidate's application to one job
// posting. The application is appended to the posting's embedded document;
// the candidate's profile is snapshotted at apply time so later profile
// edits do not rewrite history.
// @Summary Apply to a job posting
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param Application body applyRequest false "Optional cover letter"
// @Success 201 {object} model.Application "The stored application"
// @Failure 400 {object} utilities.ErrorResponse "Posting closed or expired"
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id}/apply [post]
func (ct *Controller) ApplyHandler(c *gin.Context) {
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

	req := applyRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
			})
			return
		}
	}

	var candidate model.CandidateUser
	if err := ct.DB.Where("user_id = ?", user.ID).First(&candidate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load candidate profile: %s", err.Error()),
		})
		return
	}

	application := snapshotApplication(user, &candidate, req.CoverLetter)

	_, err = ct.Store.UpdateApplications(c.Request.Context(), jobID, func(job *model.JobPosting, apps []model.Application) ([]model.Application, error) {
		if job.Status != model.JobStatusActive || job.Expired() {
			return nil, errPostingClosed
		}
		for i := range apps {
			if apps[i].ApplicantID == user.ID {
				return nil, errAlreadyApplied
			}
		}
		return append(apps, application), nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errPostingClosed):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Job posting is no longer accepting applications"})
		return
	case errors.Is(err, errAlreadyApplied):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "You have already applied to this job posting"})
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
		return
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to submit application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, application)
}

// Sentinel errors aborting the document update inside UpdateApplications so
// the status, expiry, and duplicate checks and the append stay one atomic
// read-modify-write: nothing is ever written that needs rolling back.
var (
	errAlreadyApplied = errors.New("already applied")
	errPostingClosed  = errors.New("job posting is not accepting applications")
)

// snapshotApplication builds the embedded application document from the
// candidate's current profile.
func snapshotApplication(user model.User, candidate *model.CandidateUser, coverLetter string) model.Application {
	app := model.Application{
		ApplicantID: user.ID,
		FullName:    candidate.FullName(),
		Email:       user.Username,
		CoverLetter: coverLetter,
		Skills:      candidate.Skills,
		Status:      model.StatusApplied,
		AppliedAt:   time.Now(),
	}
	if candidate.Email != nil && *candidate.Email != "" {
		app.Email = *candidate.Email
	}
	if candidate.Tel != nil {
		app.Tel = *candidate.Tel
	}
	if candidate.Experience != nil {
		app.Experience = *candidate.Experience
	}
	if candidate.Education != nil {
		app.Education = *candidate.Education
	}
	app.ExpectedSalary = candidate.ExpectedSalary
	if candidate.Availability != nil {
		app.Availability = *candidate.Availability
	}
	if candidate.LinkedIn != nil {
		app.LinkedIn = *candidate.LinkedIn
	}
	if candidate.Portfolio != nil {
		app.Portfolio = *candidate.Portfolio
	}
	if candidate.GitHub != nil {
		app.GitHub = *candidate.GitHub
	}
	if candidate.ResumeURL != nil {
		app.ResumeURL = *candidate.ResumeURL
	}
	if candidate.ResumeName != nil {
		app.ResumeName = *candidate.ResumeName
	}
	return app
}

// MyApplications lists every application the requesting candidate has
// submitted, together with the job posting metadata.
// @Summary List my applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} controller.applicationView
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [get]
func (ct *Controller) MyApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var jobs []model.JobPosting
	if err := ct.DB.Order("post_time DESC").Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch job postings: %s", err.Error()),
		})
		return
	}

	views := []applicationView{}
	for i := range jobs {
		app := jobs[i].FindApplication(user.ID)
		if app == nil {
			continue
		}
		views = append(views, applicationView{
			JobID:       jobs[i].ID,
			JobTitle:    jobs[i].Title,
			Company:     jobs[i].Company,
			Status:      app.Status,
			AppliedAt:   app.AppliedAt,
			Interview:   app.Interview,
			OfferStatus: offerStatus(app),
		})
	}

	c.JSON(http.StatusOK, views)
}

// applicationView is the candidate-facing summary of one application. AI
// screening details are recruiter-side only and never leave the server here.
type applicationView struct {
	JobID       uint                    `json:"job_id"`
	JobTitle    string                  `json:"job_title"`
	Company     string                  `json:"company"`
	Status      string                  `json:"status"`
	AppliedAt   time.Time               `json:"applied_at"`
	Interview   *model.InterviewDetails `json:"interview,omitempty"`
	OfferStatus string                  `json:"offer_status,omitempty"`
}

func offerStatus(app *model.Application) string {
	if app.Offer == nil {
		return ""
	}
	return app.Offer.Status
}
