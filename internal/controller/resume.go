package controller

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// resumeExtensions are the file types the screening extractor understands.
var resumeExtensions = []string{".pdf", ".docx", ".txt"}

// UploadResume stores the candidate's resume in cloud storage and records
// its public URL on the profile. A previous resume is deleted first.
// @Summary Upload my resume
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param file formData file true "Resume file (.pdf, .docx, or .txt)"
// @Success 200 {object} model.CandidateUser
// @Failure 400 {object} utilities.ErrorResponse "Missing file or unsupported type"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Failure 503 {object} utilities.ErrorResponse "File storage is not configured"
// @Router /profile/candidate/resume [post]
func (ct *Controller) UploadResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if ct.Files == nil {
		c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{Error: "File storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Missing resume file: %s", err.Error()),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !utilities.Contains(resumeExtensions, ext) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported resume type %q, expected one of %s", ext, strings.Join(resumeExtensions, ", ")),
		})
		return
	}

	var candidate model.CandidateUser
	if err := ct.DB.Where("user_id = ?", user.ID).First(&candidate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load candidate profile: %s", err.Error()),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to open uploaded file: %s", err.Error()),
		})
		return
	}
	defer file.Close()

	// One object per user; re-uploading replaces the old resume.
	objectName := fmt.Sprintf("resumes/%s/%s", user.ID, fileHeader.Filename)

	if candidate.ResumeURL != nil {
		old, err := ct.Files.ListUserObjects(c.Request.Context(), fmt.Sprintf("resumes/%s/", user.ID))
		if err == nil {
			for _, obj := range old {
				if obj != objectName {
					_ = ct.Files.DeleteFile(c.Request.Context(), obj)
				}
			}
		}
	}

	url, err := ct.Files.UploadFile(c.Request.Context(), objectName, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to upload resume: %s", err.Error()),
		})
		return
	}

	name := fileHeader.Filename
	candidate.ResumeURL = &url
	candidate.ResumeName = &name
	if err := ct.DB.Model(&model.CandidateUser{}).Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{"resume_url": url, "resume_name": name}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to record resume: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// DeleteResume removes the candidate's stored resume.
// @Summary Delete my resume
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "No resume on file"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Failure 503 {object} utilities.ErrorResponse "File storage is not configured"
// @Router /profile/candidate/resume [delete]
func (ct *Controller) DeleteResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if ct.Files == nil {
		c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{Error: "File storage is not configured"})
		return
	}

	var candidate model.CandidateUser
	if err := ct.DB.Where("user_id = ?", user.ID).First(&candidate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load candidate profile: %s", err.Error()),
		})
		return
	}

	if candidate.ResumeURL == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "No resume on file"})
		return
	}

	objects, err := ct.Files.ListUserObjects(c.Request.Context(), fmt.Sprintf("resumes/%s/", user.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to list stored resumes: %s", err.Error()),
		})
		return
	}
	for _, obj := range objects {
		if err := ct.Files.DeleteFile(c.Request.Context(), obj); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to delete stored resume: %s", err.Error()),
			})
			return
		}
	}

	if err := ct.DB.Model(&model.CandidateUser{}).Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{"resume_url": nil, "resume_name": nil}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to clear resume record: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Resume deleted"})
}
