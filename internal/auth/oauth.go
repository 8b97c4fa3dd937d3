package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	// Auto load .env file
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"HireSight-backend/internal/database"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

// OauthLoginHandler struct holds the database connection and OAuth2 configuration for handling OAuth login.
type OauthLoginHandler struct {
	DB               *database.DBinstanceStruct
	OauthConfig      *oauth2.Config
	UserInfoEndpoint string
}

type code struct {
	Code string `json:"code" binding:"required"`
}

// NewOauthLoginHandler creates a new instance of OauthLoginHandler with the provided database connection and OAuth2 configuration.
func NewOauthLoginHandler(db *database.DBinstanceStruct, oauthConfig *oauth2.Config, userInfoEndpoint string) *OauthLoginHandler {
	return &OauthLoginHandler{
		DB:               db,
		OauthConfig:      oauthConfig,
		UserInfoEndpoint: userInfoEndpoint,
	}
}

func (h *OauthLoginHandler) getUserInfo(c *gin.Context) (model.GoogleUserInfo, error) {

	var code code
	var uInfo model.GoogleUserInfo

	// check does body has code
	if err := c.ShouldBindJSON(&code); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("No authorization code provided: %v", err.Error()),
		})
		return uInfo, err
	}

	// Exchange code with google and get userinfo
	token, err := h.OauthConfig.Exchange(
		context.Background(),
		code.Code,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to receive token: %v", err.Error()),
		})
		return uInfo, err
	}

	client := h.OauthConfig.Client(context.Background(), token)
	resp, err := client.Get(h.UserInfoEndpoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: %v", err.Error()),
		})
		return uInfo, err
	}
	if resp.StatusCode != http.StatusOK {
		var bodyBytes []byte
		if resp.Body != nil {
			bodyBytes, _ = io.ReadAll(resp.Body)
		}
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: status=%d body=%s", resp.StatusCode, string(bodyBytes)),
		})
		return uInfo, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	err = json.NewDecoder(resp.Body).Decode(&uInfo)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to decode user info: %v", err.Error()),
		})
		return uInfo, err
	}
	if uInfo.GID == "" {
		log.Printf("warning: decoded Google user info has empty GID: %+v", uInfo)
	}
	return uInfo, nil
}

// CandidateGoogleLoginHandler handles Google login authentication for candidate role, exchanges code for user
// info, checks and creates user in the database, generates an access token, and returns user
// information with the access token.
// @Summary Handles Google login authentication for candidate role
// @Description Checks and creates user in the database, generates an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param Code body code true "Authentication code from google"
// @Success 200 {object} model.CandidateResponse "Login success"
// @Success 201 {object} model.CandidateResponse "Register success"
// @Failure 400 {object} utilities.ErrorResponse "Fail to receive token or fetch user info"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/google/candidate [post]
func (h *OauthLoginHandler) CandidateGoogleLoginHandler(c *gin.Context) {

	uInfo, err := h.getUserInfo(c)
	if err != nil {
		return
	}

	var user model.User
	respStatus := http.StatusOK

	err = h.DB.Where("google_id = ?", uInfo.GID).First(&user).Error

	candidate := model.CandidateUser{}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		candidate = model.CandidateUser{
			User: model.User{
				GoogleID: uInfo.GID,
				Username: uInfo.Email,
				Role:     model.RoleCandidate,
			},
			ContactInfo: model.ContactInfo{Email: &uInfo.Email},
			FirstName:   uInfo.FirstName,
			LastName:    uInfo.LastName,
		}
		if err := h.DB.Create(&candidate).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %v", err.Error()),
			})
			return
		}
		respStatus = http.StatusCreated

	case err == nil:
		if err := h.DB.Preload("User").Where("user_id = ?", user.ID).First(&candidate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: "You already registered as a different user type",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve user data: %v", err.Error()),
			})
			return
		}

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %v", err.Error()),
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

	c.JSON(respStatus, model.CandidateResponse{
		User:        candidate,
		AccessToken: accessToken,
	})
}

// RecruiterGoogleLoginHandler handles Google login authentication for recruiter role.
// @Summary Handles Google login authentication for recruiter role
// @Description Checks and creates user in the database, generates an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param Code body code true "Authentication code from google"
// @Success 200 {object} model.RecruiterResponse "Login success"
// @Success 201 {object} model.RecruiterResponse "Register success"
// @Failure 400 {object} utilities.ErrorResponse "Fail to receive token or fetch user info"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/google/recruiter [post]
func (h *OauthLoginHandler) RecruiterGoogleLoginHandler(c *gin.Context) {

	uInfo, err := h.getUserInfo(c)
	if err != nil {
		return
	}

	var user model.User
	respStatus := http.StatusOK

	err = h.DB.Where("google_id = ?", uInfo.GID).First(&user).Error

	recruiter := model.RecruiterUser{}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		recruiter = model.RecruiterUser{
			User: model.User{
				GoogleID: uInfo.GID,
				Username: uInfo.Email,
				Role:     model.RoleRecruiter,
			},
			ContactInfo: model.ContactInfo{Email: &uInfo.Email},
		}
		if err := h.DB.Create(&recruiter).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %v", err.Error()),
			})
			return
		}
		respStatus = http.StatusCreated

	case err == nil:
		if err := h.DB.Preload("User").Where("user_id = ?", user.ID).First(&recruiter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: "You already registered as a different user type",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve user data: %v", err.Error()),
			})
			return
		}

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %v", err.Error()),
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

	c.JSON(respStatus, model.RecruiterResponse{
		User:        recruiter,
		AccessToken: accessToken,
	})
}

// Callback retrieves a query parameter named "code" from the request and returns it
// in a JSON response.
// @Summary Retrieves a query parameter named "code" from the request and returns it in a JSON response
// @Tags Auth
// @Produce json
// @Param Code query string false "Authentication code from google"
// @Success 200 {object} code
// @Router /auth/google/callback [get]
func (h *OauthLoginHandler) Callback(c *gin.Context) {
	aCode := c.Query("code")
	c.JSON(http.StatusOK, code{
		Code: aCode,
	})
}
