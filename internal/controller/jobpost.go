package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// CreateJobPostHandler handles the creation of a new job posting by a recruiter.
// @Summary Create job posting based on given json structure
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Jobpost body model.EditableJobInfo true "Input job posting information"
// @Success 201 {object} model.JobPosting "Successfully create job posting"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or invalid job posting struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost [post]
func (ct *Controller) CreateJobPostHandler(c *gin.Context) {

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	// construct job posting from request
	jobPost := model.JobPosting{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&jobPost.EditableJobInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if jobPost.Company == "" {
		var recruiter model.RecruiterUser
		if err := ct.DB.Where("user_id = ?", user.ID.String()).First(&recruiter).Error; err == nil {
			jobPost.Company = recruiter.CompanyName
		}
	}

	// save job posting
	jobPost.RecruiterID = user.ID
	jobPost.Status = model.JobStatusActive
	if err := ct.DB.Create(&jobPost).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to create job posting: ", err),
		})
		return
	}

	// response
	c.JSON(http.StatusCreated, jobPost)
}

// GetPosts fetches job postings that match query from the database
// and returns them as a JSON response.
// @Summary Get job postings based on query
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param search query string false "Search from job posting title with substring matching and case insensitive"
// @Param type query string false "Job type field with substring matching and case insensitive"
// @Param skill query string false "Search if skills field contain skill param, case insensitive"
// @Param location query string false "Search from location with substring matching and case insensitive"
// @Param mine query boolean false "Only job postings owned by the requesting recruiter"
// @Param desc query boolean false "Sorting by post time in descending if true, otherwise ascending"
// @Success 200 {array} model.JobPosting "Return job posting(s)"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost [get]
func (ct *Controller) GetPosts(c *gin.Context) {

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := ct.DB.Model(&model.JobPosting{})

	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if jobType := c.Query("type"); jobType != "" {
		query = query.Where("type ILIKE ?", "%"+jobType+"%")
	}
	if skill := c.Query("skill"); skill != "" {
		query = query.Where("? ILIKE ANY(skills)", skill)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		query = query.Where("recruiter_id = ?", user.ID)
	} else {
		// Candidates browse active, unexpired postings only.
		query = query.Where("status = ?", model.JobStatusActive).
			Where("expiring > ? OR expiring IS NULL", time.Now())
	}

	order := "post_time ASC"
	if desc, _ := strconv.ParseBool(c.DefaultQuery("desc", "true")); desc {
		order = "post_time DESC"
	}

	var posts []model.JobPosting
	if err := query.Order(order).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch job postings: ", err.Error()),
		})
		return
	}

	// Strip applicant documents for non-owners.
	for i := range posts {
		if posts[i].RecruiterID != user.ID && user.Role != model.RoleAdmin {
			posts[i].Applications = nil
		}
	}

	c.JSON(http.StatusOK, posts)
}

// GetPostByID fetches one job posting by id.
// @Summary Get one job posting
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Success 200 {object} model.JobPosting
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id} [get]
func (ct *Controller) GetPostByID(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id := c.Param("id")

	job := model.JobPosting{}
	if err := ct.DB.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	if job.RecruiterID != user.ID && user.Role != model.RoleAdmin {
		job.Applications = nil
	}

	c.JSON(http.StatusOK, job)
}

// EditJobPost allows a recruiter to update a job posting they own.
// @Summary Edit job posting
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Param Jobpost body model.EditableJobInfo true "Fields to update"
// @Success 200 {object} model.JobPosting
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id} [patch]
func (ct *Controller) EditJobPost(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id := c.Param("id")

	job := model.JobPosting{}
	if err := ct.DB.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	// Verify ownership: the job posting must belong to the requesting recruiter
	if job.RecruiterID.String() != user.ID.String() && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to edit this job posting"})
		return
	}

	// Bind into the editable part only so ownership and the applicant
	// document cannot be overwritten through this endpoint.
	updated := model.EditableJobInfo{}
	if err := c.ShouldBindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&job.EditableJobInfo, &updated)

	if err := ct.DB.Model(&model.JobPosting{}).Where("id = ?", job.ID).
		Select("Title", "Company", "Department", "Desc", "Req", "Skills", "ExpLvl", "Location", "Type", "Salary", "Expiring").
		Updates(job.EditableJobInfo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job posting: %s", err.Error()),
		})
		return
	}

	if err := ct.DB.Where("id = ?", job.ID).First(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated job posting: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// CloseJobPost marks a job posting closed so it stops accepting applications.
// @Summary Close job posting
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting id"
// @Success 200 {object} utilities.MessageResponse
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id}/close [post]
func (ct *Controller) CloseJobPost(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id := c.Param("id")

	job := model.JobPosting{}
	if err := ct.DB.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	if job.RecruiterID.String() != user.ID.String() && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to close this job posting"})
		return
	}

	if err := ct.DB.Model(&job).Update("status", model.JobStatusClosed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to close job posting: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job posting closed"})
}

// parseJobID converts the :id path param.
func parseJobID(c *gin.Context) (uint, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid job posting id %q", raw)
	}
	return uint(id), nil
}
