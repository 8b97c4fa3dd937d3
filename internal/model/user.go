package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// RoleAdmin is role for site administrator
	RoleAdmin = "admin"
	// RoleRecruiter is role for recruiter users that own job postings
	RoleRecruiter = "recruiter"
	// RoleCandidate is role for job seeker users
	RoleCandidate = "candidate"
)

// User is the base account record shared by every role.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex" json:"username"`
	Password  string    `json:"-"`
	GoogleID  string    `json:"-"`
	Role      string    `gorm:"type:text" json:"role"`
}

// ContactInfo holds optional contact channels shared by profile models.
type ContactInfo struct {
	Tel   *string `json:"tel"`
	Email *string `json:"email"`
}

// CandidateUser is the job seeker profile attached to a base User.
type CandidateUser struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`
	ContactInfo `gorm:"embedded"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Skills      pq.StringArray `gorm:"type:text[]" json:"skills"`
	// Experience is a bucketed range in years, e.g. "0-1", "1-3", "3-5", "5-10", "10+"
	Experience     *string  `json:"experience"`
	Education      *string  `json:"education"`
	ExpectedSalary *float64 `json:"expected_salary"`
	Availability   *string  `json:"availability"`
	LinkedIn       *string  `json:"linkedin"`
	Portfolio      *string  `json:"portfolio"`
	GitHub         *string  `json:"github"`
	ResumeURL      *string  `json:"resume_url"`
	ResumeName     *string  `json:"resume_name"`
}

// FullName joins first and last name for email templates and display.
func (c *CandidateUser) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// RecruiterUser is the company-side profile attached to a base User.
type RecruiterUser struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`
	ContactInfo `gorm:"embedded"`
	CompanyName string  `json:"company_name"`
	Industry    *string `json:"industry"`
	Location    *string `json:"location"`
	Overview    *string `json:"overview"`
	LogoURL     *string `json:"logo_url"`
	// ReplyTo overrides the reply address on candidate notification emails
	ReplyTo *string `json:"reply_to"`
}
