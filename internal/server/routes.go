package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	// Init swagger doc
	_ "HireSight-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"HireSight-backend/internal/auth"
	"HireSight-backend/internal/middleware"
	"HireSight-backend/internal/model"
)

// RegisterRoutes will register each http endpoint route to the bound server.
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	googleOauth := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_AUTH_CLIENT"),
		ClientSecret: os.Getenv("GOOGLE_AUTH_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: os.Getenv("OAUTH_REDIRECT_URL"),
	}

	gAuth := auth.NewOauthLoginHandler(s.DB, googleOauth, "https://www.googleapis.com/oauth2/v2/userinfo")
	lAuth := auth.NewLocalAuthHandler(s.DB)
	ctrl := s.Controller

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.EnvRateLimitMiddleware())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("google/candidate", gAuth.CandidateGoogleLoginHandler)
			authRoute.POST("google/recruiter", gAuth.RecruiterGoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)

			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			jobPostRoute := needAuth.Group("/jobpost")
			{
				jobPostRoute.GET("", ctrl.GetPosts)
				jobPostRoute.GET(":id", ctrl.GetPostByID)

				jobPostRoute.POST(":id/apply", middleware.CheckRole(model.RoleCandidate), ctrl.ApplyHandler)
				jobPostRoute.POST(":id/offer/respond", middleware.CheckRole(model.RoleCandidate), ctrl.RespondOffer)

				needRecruiter := jobPostRoute.Group("")
				{
					needRecruiter.Use(middleware.CheckRole(model.RoleRecruiter, model.RoleAdmin))
					needRecruiter.POST("", ctrl.CreateJobPostHandler)
					needRecruiter.PATCH(":id", ctrl.EditJobPost)
					needRecruiter.POST(":id/close", ctrl.CloseJobPost)
				}
			}

			needAuth.GET("/application", middleware.CheckRole(model.RoleCandidate), ctrl.MyApplications)

			// Candidate screening endpoints (recruiter only)
			candidatesRoute := needAuth.Group("/candidates")
			{
				candidatesRoute.Use(middleware.CheckRole(model.RoleRecruiter, model.RoleAdmin))
				candidatesRoute.GET("", ctrl.ListCandidates)
				candidatesRoute.POST("screen", ctrl.ScreenAll)
				candidatesRoute.GET("screen/state", ctrl.ScreeningState)
				candidatesRoute.POST("auto-reject", ctrl.AutoRejectSweep)
				candidatesRoute.PATCH(":id/:applicant/status", ctrl.UpdateCandidateStatus)
				candidatesRoute.POST(":id/:applicant/score", ctrl.ScoreCandidate)
				candidatesRoute.GET(":id/:applicant/score", ctrl.CandidateScore)
				candidatesRoute.POST(":id/:applicant/interview", ctrl.ScheduleInterview)
				candidatesRoute.POST(":id/:applicant/offer/draft", ctrl.GenerateOffer)
				candidatesRoute.POST(":id/:applicant/offer", ctrl.SendOffer)
			}

			profileRoute := needAuth.Group("/profile")
			{
				candidateProfile := profileRoute.Group("/candidate")
				{
					candidateProfile.Use(middleware.CheckRole(model.RoleCandidate))
					candidateProfile.GET("", ctrl.GetCandidateProfile)
					candidateProfile.PATCH("", ctrl.UpdateCandidateProfile)
					candidateProfile.POST("resume", middleware.SizeLimit(10<<20), ctrl.UploadResume)
					candidateProfile.DELETE("resume", ctrl.DeleteResume)
				}

				recruiterProfile := profileRoute.Group("/recruiter")
				{
					recruiterProfile.Use(middleware.CheckRole(model.RoleRecruiter))
					recruiterProfile.GET("", ctrl.GetRecruiterProfile)
					recruiterProfile.PATCH("", ctrl.UpdateRecruiterProfile)
				}
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
