package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// GetCandidateProfile returns the requesting candidate's profile.
// @Summary Get my candidate profile
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.CandidateUser
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/candidate [get]
func (ct *Controller) GetCandidateProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var candidate model.CandidateUser
	if err := ct.DB.Preload("User").Where("user_id = ?", user.ID).First(&candidate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load candidate profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// UpdateCandidateProfile merges the non-empty fields of the request body
// into the requesting candidate's profile.
// @Summary Update my candidate profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Profile body model.CandidateUser true "Fields to update"
// @Success 200 {object} model.CandidateUser
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/candidate [patch]
func (ct *Controller) UpdateCandidateProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var candidate model.CandidateUser
	if err := ct.DB.Where("user_id = ?", user.ID).First(&candidate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load candidate profile: %s", err.Error()),
		})
		return
	}

	incoming := model.CandidateUser{}
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	// UserID and the embedded User stay server-controlled.
	incoming.UserID = candidate.UserID
	incoming.User = model.User{}
	utilities.MergeNonEmpty(&candidate, &incoming)

	if err := ct.DB.Where("user_id = ?", user.ID).Save(&candidate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update candidate profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// GetRecruiterProfile returns the requesting recruiter's profile.
// @Summary Get my recruiter profile
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.RecruiterUser
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/recruiter [get]
func (ct *Controller) GetRecruiterProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var recruiter model.RecruiterUser
	if err := ct.DB.Preload("User").Where("user_id = ?", user.ID).First(&recruiter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load recruiter profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, recruiter)
}

// UpdateRecruiterProfile merges the non-empty fields of the request body
// into the requesting recruiter's profile.
// @Summary Update my recruiter profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Profile body model.RecruiterUser true "Fields to update"
// @Success 200 {object} model.RecruiterUser
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/recruiter [patch]
func (ct *Controller) UpdateRecruiterProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var recruiter model.RecruiterUser
	if err := ct.DB.Where("user_id = ?", user.ID).First(&recruiter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load recruiter profile: %s", err.Error()),
		})
		return
	}

	incoming := model.RecruiterUser{}
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	incoming.UserID = recruiter.UserID
	incoming.User = model.User{}
	utilities.MergeNonEmpty(&recruiter, &incoming)

	if err := ct.DB.Where("user_id = ?", user.ID).Save(&recruiter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update recruiter profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, recruiter)
}
