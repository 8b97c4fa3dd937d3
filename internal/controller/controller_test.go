package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"HireSight-backend/internal/auth"
	"HireSight-backend/internal/database"
	"HireSight-backend/internal/middleware"
	"HireSight-backend/internal/model"
	"HireSight-backend/internal/screening"
	"HireSight-backend/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

// stubScorer returns a fixed score for every candidate.
type stubScorer struct {
	score      float64
	confidence float64
}

func (s *stubScorer) Score(context.Context, screening.ScoreRequest) (*model.AIScreening, error) {
	return &model.AIScreening{
		Score:          s.score,
		Confidence:     s.confidence,
		Explanation:    "stubbed",
		Recommendation: model.RecommendConsider,
		ScoredAt:       time.Now(),
	}, nil
}

// stubExtractor always reports no resume text.
type stubExtractor struct{}

func (stubExtractor) ExtractText(context.Context, string) (string, error) { return "", nil }

// newTestController wires a Controller over the shared test database with a
// stub scorer and no mail or file integrations.
func newTestController(scorer screening.Scorer) *Controller {
	store := database.NewJobStore(testDB)
	cache := screening.NewScoreCache()
	var worker *screening.Worker
	if scorer != nil {
		worker = screening.NewWorker(store, scorer, stubExtractor{}, screening.NewGate(), cache, 0)
	}
	policy := screening.NewPolicy(store, nil, 0)
	return NewController(testDB, store, worker, policy, cache, nil, nil, nil)
}

func token(t *testing.T, user model.User) string {
	t.Helper()
	tok, err := auth.GetAccessToken(t, testDB, user.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	return tok
}

func decodeList(t *testing.T, body []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	assert.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestGetPostByIDSuccess(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/jobpost/:id", middleware.RequireAuth(testDB), ct.GetPostByID)

	rec, resp := testutil.MakeJSONRequest(nil, token(t, database.TestUserRecruiter1), r,
		fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(database.TestJobPost1.ID), resp["id"])
	assert.Equal(t, database.TestJobPost1.Title, resp["title"])
	assert.NotNil(t, resp["applications"], "owner sees the applicant documents")
}

func TestGetPostByIDHidesApplicationsFromNonOwner(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/jobpost/:id", middleware.RequireAuth(testDB), ct.GetPostByID)

	rec, resp := testutil.MakeJSONRequest(nil, token(t, database.TestUserCandidate1), r,
		fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resp["applications"])
}

func TestGetPostByIDNotFound(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/jobpost/:id", middleware.RequireAuth(testDB), ct.GetPostByID)

	rec, _ := testutil.MakeJSONRequest(nil, token(t, database.TestUserRecruiter1), r,
		"/jobpost/999999", http.MethodGet)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndCloseJobPost(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/jobpost", middleware.RequireAuth(testDB), ct.CreateJobPostHandler)
	r.POST("/jobpost/:id/close", middleware.RequireAuth(testDB), ct.CloseJobPost)

	recruiterToken := token(t, database.TestUserRecruiter2)

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"title":    "Site Reliability Engineer",
		"desc":     "Keep the lights on.",
		"type":     "Full-time",
		"location": "Remote",
	}, recruiterToken, r, "/jobpost", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "Site Reliability Engineer", resp["title"])
	assert.Equal(t, model.JobStatusActive, resp["status"])
	// The recruiter's company name fills in when the body omits it.
	assert.Equal(t, database.TestRecruiter2.CompanyName, resp["company"])

	jobID := uint(resp["id"].(float64))

	rec, _ = testutil.MakeJSONRequest(nil, recruiterToken, r,
		fmt.Sprintf("/jobpost/%d/close", jobID), http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)

	var job model.JobPosting
	assert.NoError(t, testDB.Where("id = ?", jobID).First(&job).Error)
	assert.Equal(t, model.JobStatusClosed, job.Status)
}

func TestEditJobPostOwnershipEnforced(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.PATCH("/jobpost/:id", middleware.RequireAuth(testDB), ct.EditJobPost)

	// Recruiter 2 does not own job post 1.
	rec, _ := testutil.MakeJSONRequest(gin.H{"title": "hijacked"},
		token(t, database.TestUserRecruiter2), r,
		fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID), http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{"department": "Platform"},
		token(t, database.TestUserRecruiter1), r,
		fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID), http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "Platform", resp["department"])
	// Untouched fields survive the merge.
	assert.Equal(t, database.TestJobPost1.Title, resp["title"])
}

func TestApplyAppendsToDocument(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/jobpost/:id/apply", middleware.RequireAuth(testDB), ct.ApplyHandler)

	candidateToken := token(t, database.TestUserCandidate2)

	rec, resp := testutil.MakeJSONRequest(gin.H{"cover_letter": "I would love to join."},
		candidateToken, r,
		fmt.Sprintf("/jobpost/%d/apply", database.TestJobPost2.ID), http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, model.StatusApplied, resp["status"])
	assert.Equal(t, database.TestCandidate2.FullName(), resp["full_name"])

	// The profile snapshot landed in the embedded document.
	var job model.JobPosting
	assert.NoError(t, testDB.Where("id = ?", database.TestJobPost2.ID).First(&job).Error)
	app := job.FindApplication(database.TestUserCandidate2.ID)
	assert.NotNil(t, app)
	assert.Equal(t, "I would love to join.", app.CoverLetter)

	// Applying twice to the same posting is rejected.
	rec, _ = testutil.MakeJSONRequest(nil, candidateToken, r,
		fmt.Sprintf("/jobpost/%d/apply", database.TestJobPost2.ID), http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMyApplications(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/application", middleware.RequireAuth(testDB), ct.MyApplications)

	rec, _ := testutil.MakeJSONRequest(nil, token(t, database.TestUserCandidate2), r,
		"/application", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	views := decodeList(t, rec.Body.Bytes())
	// Seeded application on job 1 plus the one submitted above.
	assert.Len(t, views, 2)
	for _, v := range views {
		// Candidate-facing view never exposes AI screening details.
		assert.NotContains(t, v, "ai")
	}
}

func TestListCandidatesWithFilters(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/candidates", middleware.RequireAuth(testDB), ct.ListCandidates)

	recruiterToken := token(t, database.TestUserRecruiter1)

	rec, _ := testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	all := decodeList(t, rec.Body.Bytes())
	// Two seeded applications on job 1 plus candidate 2's on job 2.
	assert.Len(t, all, 3)

	rec, _ = testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates?unscreened=true", http.MethodGet)
	unscreened := decodeList(t, rec.Body.Bytes())
	assert.Len(t, unscreened, 2)

	rec, _ = testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates?recommended=true", http.MethodGet)
	recommended := decodeList(t, rec.Body.Bytes())
	assert.Len(t, recommended, 1)

	rec, _ = testutil.MakeJSONRequest(nil, recruiterToken, r,
		fmt.Sprintf("/candidates?job=%d", database.TestJobPost2.ID), http.MethodGet)
	byJob := decodeList(t, rec.Body.Bytes())
	assert.Len(t, byJob, 1)

	// Recruiter 2 sees none of recruiter 1's candidates.
	rec, _ = testutil.MakeJSONRequest(nil, token(t, database.TestUserRecruiter2), r,
		"/candidates", http.MethodGet)
	other := decodeList(t, rec.Body.Bytes())
	assert.Empty(t, other)
}

func TestUpdateCandidateStatus(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.PATCH("/candidates/:id/:applicant/status", middleware.RequireAuth(testDB), ct.UpdateCandidateStatus)

	recruiterToken := token(t, database.TestUserRecruiter1)
	url := fmt.Sprintf("/candidates/%d/%s/status", database.TestJobPost1.ID, database.TestUserCandidate1.ID)

	rec, resp := testutil.MakeJSONRequest(gin.H{"status": "shortlisted"}, recruiterToken, r, url, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, model.StatusShortlisted, resp["status"])

	// Unknown applicant.
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "reviewed"}, recruiterToken, r,
		fmt.Sprintf("/candidates/%d/%s/status", database.TestJobPost1.ID, database.TestUserRecruiter2.ID), http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Invalid status value.
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "promoted"}, recruiterToken, r, url, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Not the owner.
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "reviewed"},
		token(t, database.TestUserRecruiter2), r, url, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScoreCandidateAndAutoRejectSweep(t *testing.T) {
	// Low score with high confidence: the sweep must reject it.
	ct := newTestController(&stubScorer{score: 30, confidence: 92})
	r := gin.Default()
	r.POST("/candidates/:id/:applicant/score", middleware.RequireAuth(testDB), ct.ScoreCandidate)
	r.POST("/candidates/auto-reject", middleware.RequireAuth(testDB), ct.AutoRejectSweep)

	recruiterToken := token(t, database.TestUserRecruiter1)

	rec, resp := testutil.MakeJSONRequest(nil, recruiterToken, r,
		fmt.Sprintf("/candidates/%d/%s/score", database.TestJobPost1.ID, database.TestUserCandidate2.ID), http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	ai, ok := resp["ai"].(map[string]interface{})
	assert.True(t, ok, "scored application carries the screening block")
	assert.Equal(t, float64(30), ai["score"])

	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates/auto-reject", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["rejected"], "body: %s", rec.Body.String())

	var job model.JobPosting
	assert.NoError(t, testDB.Where("id = ?", database.TestJobPost1.ID).First(&job).Error)
	app := job.FindApplication(database.TestUserCandidate2.ID)
	assert.Equal(t, model.StatusRejected, app.Status)
	assert.True(t, app.AI.AutoRejected)
	assert.Contains(t, app.AI.AutoRejectReason, "Automatically rejected")

	// Re-running the sweep rejects nothing new.
	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates/auto-reject", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), resp["rejected"])
}

func TestScreenAll(t *testing.T) {
	// High score: nothing gets auto-rejected.
	ct := newTestController(&stubScorer{score: 85, confidence: 90})
	r := gin.Default()
	r.POST("/candidates/screen", middleware.RequireAuth(testDB), ct.ScreenAll)
	r.GET("/candidates/screen/state", middleware.RequireAuth(testDB), ct.ScreeningState)

	recruiterToken := token(t, database.TestUserRecruiter1)

	rec, resp := testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates/screen", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	batch, ok := resp["batch"].(map[string]interface{})
	assert.True(t, ok)
	// Candidate 2's application on job 2 was the only unscored one left.
	assert.Equal(t, float64(1), batch["scored"])
	assert.Equal(t, float64(0), batch["failed"])

	sweep := resp["sweep"].(map[string]interface{})
	assert.Equal(t, float64(0), sweep["rejected"])

	// A second run finds nothing to score.
	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates/screen", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	batch = resp["batch"].(map[string]interface{})
	assert.Equal(t, float64(0), batch["scored"])

	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, "/candidates/screen/state", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(screening.StateIdle), resp["state"])
}

func TestScreenAllUnavailableWithoutScorer(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/candidates/screen", middleware.RequireAuth(testDB), ct.ScreenAll)

	rec, _ := testutil.MakeJSONRequest(nil, token(t, database.TestUserRecruiter1), r,
		"/candidates/screen", http.MethodPost)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScheduleInterview(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/candidates/:id/:applicant/interview", middleware.RequireAuth(testDB), ct.ScheduleInterview)

	recruiterToken := token(t, database.TestUserRecruiter1)
	url := fmt.Sprintf("/candidates/%d/%s/interview", database.TestJobPost1.ID, database.TestUserCandidate1.ID)

	// Phone interview without a number is invalid.
	rec, _ := testutil.MakeJSONRequest(gin.H{
		"mode": "phone", "date": "2026-09-10", "time": "10:00",
	}, recruiterToken, r, url, http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"mode":         "zoom",
		"date":         "2026-09-10",
		"time":         "10:00",
		"meeting_link": "https://zoom.us/j/42",
	}, recruiterToken, r, url, http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, model.StatusInterviewScheduled, resp["status"])

	interview := resp["interview"].(map[string]interface{})
	assert.Equal(t, "zoom", interview["mode"])
	assert.Equal(t, "https://zoom.us/j/42", interview["meeting_link"])
}

func TestOfferLifecycle(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/candidates/:id/:applicant/offer", middleware.RequireAuth(testDB), ct.SendOffer)
	r.POST("/jobpost/:id/offer/respond", middleware.RequireAuth(testDB), ct.RespondOffer)

	recruiterToken := token(t, database.TestUserRecruiter1)
	candidateToken := token(t, database.TestUserCandidate1)

	sendURL := fmt.Sprintf("/candidates/%d/%s/offer", database.TestJobPost1.ID, database.TestUserCandidate1.ID)
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"salary":      "65000 THB",
		"start_date":  "2026-10-01",
		"letter_body": "We are delighted to offer you the role.",
	}, recruiterToken, r, sendURL, http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	offer := resp["offer"].(map[string]interface{})
	assert.Equal(t, model.OfferSent, offer["status"])
	assert.Equal(t, database.TestJobPost1.Title, offer["position"])

	// A second offer to the same candidate is refused.
	rec, _ = testutil.MakeJSONRequest(gin.H{"letter_body": "again"}, recruiterToken, r, sendURL, http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)

	respondURL := fmt.Sprintf("/jobpost/%d/offer/respond", database.TestJobPost1.ID)
	rec, resp = testutil.MakeJSONRequest(gin.H{"response": "accepted"}, candidateToken, r, respondURL, http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, model.StatusHired, resp["status"])

	offer = resp["offer"].(map[string]interface{})
	assert.Equal(t, model.OfferAccepted, offer["status"])

	// Responding twice is refused.
	rec, _ = testutil.MakeJSONRequest(gin.H{"response": "declined"}, candidateToken, r, respondURL, http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTerminalStatusIsStable(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.PATCH("/candidates/:id/:applicant/status", middleware.RequireAuth(testDB), ct.UpdateCandidateStatus)

	// Candidate 1 was hired in the offer lifecycle test above.
	rec, _ := testutil.MakeJSONRequest(gin.H{"status": "rejected"},
		token(t, database.TestUserRecruiter1), r,
		fmt.Sprintf("/candidates/%d/%s/status", database.TestJobPost1.ID, database.TestUserCandidate1.ID),
		http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCandidateProfileRoundTrip(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/profile/candidate", middleware.RequireAuth(testDB), ct.GetCandidateProfile)
	r.PATCH("/profile/candidate", middleware.RequireAuth(testDB), ct.UpdateCandidateProfile)

	candidateToken := token(t, database.TestUserCandidate2)

	rec, resp := testutil.MakeJSONRequest(nil, candidateToken, r, "/profile/candidate", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob", resp["first_name"])

	rec, resp = testutil.MakeJSONRequest(gin.H{"linkedin": "https://linkedin.com/in/bob"},
		candidateToken, r, "/profile/candidate", http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "https://linkedin.com/in/bob", resp["linkedin"])
	// Existing fields survive a partial update.
	assert.Equal(t, "Bob", resp["first_name"])
}

func TestRecruiterProfileRoundTrip(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/profile/recruiter", middleware.RequireAuth(testDB), ct.GetRecruiterProfile)
	r.PATCH("/profile/recruiter", middleware.RequireAuth(testDB), ct.UpdateRecruiterProfile)

	recruiterToken := token(t, database.TestUserRecruiter2)

	rec, resp := testutil.MakeJSONRequest(gin.H{"industry": "Consulting"},
		recruiterToken, r, "/profile/recruiter", http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "Consulting", resp["industry"])
	assert.Equal(t, database.TestRecruiter2.CompanyName, resp["company_name"])
}

func TestUploadResumeUnavailableWithoutStorage(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/profile/candidate/resume", middleware.RequireAuth(testDB), ct.UploadResume)

	rec, _ := testutil.MakeJSONRequest(nil, token(t, database.TestUserCandidate2), r,
		"/profile/candidate/resume", http.MethodPost)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApplyToClosedPostingLeavesDocumentUntouched(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.POST("/jobpost/:id/apply", middleware.RequireAuth(testDB), ct.ApplyHandler)

	closed := model.JobPosting{
		RecruiterID: database.TestUserRecruiter2.ID,
		EditableJobInfo: model.EditableJobInfo{
			Title:   "Archive Clerk",
			Company: database.TestRecruiter2.CompanyName,
		},
		Status: model.JobStatusClosed,
	}
	assert.NoError(t, testDB.Create(&closed).Error)

	past := time.Now().Add(-24 * time.Hour)
	expired := model.JobPosting{
		RecruiterID: database.TestUserRecruiter2.ID,
		EditableJobInfo: model.EditableJobInfo{
			Title:    "Night Auditor",
			Company:  database.TestRecruiter2.CompanyName,
			Expiring: &past,
		},
		Status: model.JobStatusActive,
	}
	assert.NoError(t, testDB.Create(&expired).Error)

	candidateToken := token(t, database.TestUserCandidate2)
	for _, job := range []model.JobPosting{closed, expired} {
		rec, resp := testutil.MakeJSONRequest(gin.H{"cover_letter": "Better late than never."},
			candidateToken, r,
			fmt.Sprintf("/jobpost/%d/apply", job.ID), http.MethodPost)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", rec.Body.String())
		assert.Equal(t, "Job posting is no longer accepting applications", resp["error"])

		// The refused application never reached the document and the
		// revision never moved, so there was nothing to roll back.
		var fresh model.JobPosting
		assert.NoError(t, testDB.Where("id = ?", job.ID).First(&fresh).Error)
		assert.Nil(t, fresh.FindApplication(database.TestUserCandidate2.ID))
		assert.EqualValues(t, 0, fresh.Revision)
	}
}

func TestCandidateScoreReadThroughCache(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/candidates/:id/:applicant/score", middleware.RequireAuth(testDB), ct.CandidateScore)

	recruiterToken := token(t, database.TestUserRecruiter1)
	url := fmt.Sprintf("/candidates/%d/%s/score",
		database.TestJobPost1.ID, database.TestUserCandidate1.ID)

	// Cold cache: the score comes from the persisted document and is mirrored.
	rec, resp := testutil.MakeJSONRequest(nil, recruiterToken, r, url, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, float64(82), resp["score"])
	assert.Equal(t, float64(90), resp["confidence"])

	cached, hit := ct.Cache.Lookup(database.TestJobPost1.ID, database.TestUserCandidate1.ID)
	assert.True(t, hit)
	assert.Equal(t, float64(82), cached.Score)

	// Warm cache: the entry is served without reading the document.
	ct.Cache.Put(database.TestJobPost1.ID, database.TestUserCandidate1.ID,
		screening.CachedScore{Score: 64, Confidence: 70, ScoredAt: time.Now()})
	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, url, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(64), resp["score"])

	// Dropping the entry falls back to the persisted score again.
	ct.Cache.Invalidate(database.TestJobPost1.ID, database.TestUserCandidate1.ID)
	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, url, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(82), resp["score"])
}

func TestCandidateScoreUnscoredApplicant(t *testing.T) {
	ct := newTestController(nil)
	r := gin.Default()
	r.GET("/candidates/:id/:applicant/score", middleware.RequireAuth(testDB), ct.CandidateScore)
	r.POST("/jobpost/:id/apply", middleware.RequireAuth(testDB), ct.ApplyHandler)

	recruiterToken := token(t, database.TestUserRecruiter2)
	url := fmt.Sprintf("/candidates/%d/%s/score",
		database.TestJobPost3.ID, database.TestUserCandidate1.ID)

	// Nobody has applied to this posting yet.
	rec, resp := testutil.MakeJSONRequest(nil, recruiterToken, r, url, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Applicant not found in job posting", resp["error"])

	rec, _ = testutil.MakeJSONRequest(nil, token(t, database.TestUserCandidate1), r,
		fmt.Sprintf("/jobpost/%d/apply", database.TestJobPost3.ID), http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	// Applied but never screened: no score to serve and nothing left cached.
	rec, resp = testutil.MakeJSONRequest(nil, recruiterToken, r, url, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Candidate has not been scored yet", resp["error"])
	_, hit := ct.Cache.Lookup(database.TestJobPost3.ID, database.TestUserCandidate1.ID)
	assert.False(t, hit)
}
