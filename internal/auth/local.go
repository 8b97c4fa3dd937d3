package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HireSight-backend/internal/database"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// LocalAuthHandler handles username/password registration and login.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{DB: db}
}

// LocalRegisterHandler function handles local registration by receiving username and password
// do nothing if username already exist in the database
// do nothing if password is shorter than 8 characters
// @Summary Register with username, password and role
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} model.CandidateResponse "Register success"
// @Failure 400 {object} utilities.ErrorResponse "Missing field or username taken"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/register [post]
func (h *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required,oneof=candidate recruiter"`
	}

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password, and Role (Only 'candidate' or 'recruiter') must be provided",
		})
		return
	}

	var user model.User
	err := h.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case err == nil:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	switch info.Role {
	case "candidate":
		candidate := model.CandidateUser{
			User: model.User{
				Username: info.Username,
				Password: hashedPassword,
				Role:     model.RoleCandidate,
			},
		}
		if err := h.DB.Create(&candidate).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
			})
			return
		}

		accessToken, _, err := GenerateStandardToken(candidate.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
			})
			return
		}

		c.JSON(http.StatusCreated, model.CandidateResponse{
			User:        candidate,
			AccessToken: accessToken,
		})
	case "recruiter":
		recruiter := model.RecruiterUser{
			User: model.User{
				Username: info.Username,
				Password: hashedPassword,
				Role:     model.RoleRecruiter,
			},
		}
		if err := h.DB.Create(&recruiter).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
			})
			return
		}

		accessToken, _, err := GenerateStandardToken(recruiter.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
			})
			return
		}

		c.JSON(http.StatusCreated, model.RecruiterResponse{
			User:        recruiter,
			AccessToken: accessToken,
		})
	default:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Role '%s' not allowed", info.Role),
		})
	}
}

// LocalLoginHandler function handles local login by receiving username and password
// @Summary Login with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} model.CandidateResponse "Login success"
// @Failure 400 {object} utilities.ErrorResponse "Missing field"
// @Failure 401 {object} utilities.ErrorResponse "Wrong username or password"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (h *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	var user model.User
	err := h.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	}

	accessToken, _, err := GenerateStandardToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": accessToken,
	})
}
