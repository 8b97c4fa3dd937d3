package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// StatusApplied indicates a freshly submitted application
	StatusApplied = "applied"
	// StatusReviewed indicates a recruiter has looked at the application
	StatusReviewed = "reviewed"
	// StatusShortlisted indicates the candidate made the shortlist
	StatusShortlisted = "shortlisted"
	// StatusInterviewScheduled indicates an interview has been booked
	StatusInterviewScheduled = "interview_scheduled"
	// StatusHired is a terminal state
	StatusHired = "hired"
	// StatusRejected is a terminal state, reachable from any non-terminal state
	StatusRejected = "rejected"
)

// TerminalStatus reports whether a status can no longer change.
func TerminalStatus(status string) bool {
	return status == StatusHired || status == StatusRejected
}

var (
	// RecommendStrongMatch means the AI considers the candidate an excellent fit
	RecommendStrongMatch = "strong-match"
	// RecommendGoodMatch means the AI considers the candidate a good fit
	RecommendGoodMatch = "good-match"
	// RecommendConsider means the AI suggests a closer manual look
	RecommendConsider = "consider"
	// RecommendNotRecommended means the AI considers the candidate a poor fit
	RecommendNotRecommended = "not-recommended"
)

// ScoreBreakdown is the four-part sub-score returned by the screening AI.
// The relative weighting of the parts is the AI collaborator's concern.
type ScoreBreakdown struct {
	SkillsMatch         float64 `json:"skills_match"`
	ExperienceRelevance float64 `json:"experience_relevance"`
	PracticalExposure   float64 `json:"practical_exposure"`
	Education           float64 `json:"education"`
}

// AIScreening holds the persisted result of one AI scoring call.
// Score and Confidence are always set together; their presence is what
// marks an application as already screened.
type AIScreening struct {
	Score          float64        `json:"score"`
	Confidence     float64        `json:"confidence"`
	Explanation    string         `json:"explanation"`
	Recommendation string         `json:"recommendation"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Strengths      []string       `json:"strengths,omitempty"`
	Concerns       []string       `json:"concerns,omitempty"`
	DataQuality    string         `json:"data_quality,omitempty"`
	ScoredAt       time.Time      `json:"scored_at"`

	AutoRejected     bool       `json:"auto_rejected,omitempty"`
	AutoRejectedAt   *time.Time `json:"auto_rejected_at,omitempty"`
	AutoRejectReason string     `json:"auto_reject_reason,omitempty"`
}

// InterviewDetails is attached to an application when an interview is
// scheduled. It is kept through hired/rejected for audit purposes.
type InterviewDetails struct {
	// Mode is one of "google-meet", "zoom", "phone", "on-site"
	Mode        string    `json:"mode"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Location    string    `json:"location,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

var (
	// OfferSent means an offer letter has been emailed to the candidate
	OfferSent = "sent"
	// OfferAccepted means the candidate accepted the offer
	OfferAccepted = "accepted"
	// OfferDeclined means the candidate declined the offer
	OfferDeclined = "declined"
)

// OfferDetails is attached to an application once an offer letter is sent.
type OfferDetails struct {
	Position    string     `json:"position"`
	Salary      string     `json:"salary"`
	StartDate   string     `json:"start_date"`
	LetterBody  string     `json:"letter_body"`
	Status      string     `json:"status"`
	SentAt      time.Time  `json:"sent_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// Application is one candidate's application to one job posting. It is not
// its own table: the full list lives as a JSON document column on the
// owning JobPosting row and is always read and written as a whole.
type Application struct {
	ApplicantID uuid.UUID `json:"applicant_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Tel         string    `json:"tel,omitempty"`

	ResumeURL  string `json:"resume_url,omitempty"`
	ResumeName string `json:"resume_name,omitempty"`

	CoverLetter string   `json:"cover_letter,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	// Experience is the same bucketed range used on CandidateUser
	Experience     string   `json:"experience,omitempty"`
	Education      string   `json:"education,omitempty"`
	ExpectedSalary *float64 `json:"expected_salary,omitempty"`
	Availability   string   `json:"availability,omitempty"`
	LinkedIn       string   `json:"linkedin,omitempty"`
	Portfolio      string   `json:"portfolio,omitempty"`
	GitHub         string   `json:"github,omitempty"`

	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`

	AI        *AIScreening      `json:"ai,omitempty"`
	Interview *InterviewDetails `json:"interview,omitempty"`
	Offer     *OfferDetails     `json:"offer,omitempty"`
}

// Screened reports whether the application already carries a persisted AI
// score. This is the authoritative gate condition for the screening worker.
func (a *Application) Screened() bool {
	return a.AI != nil
}
