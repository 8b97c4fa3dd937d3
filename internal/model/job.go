// Package model contain gorm model for recording data to database
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// JobStatusActive indicates the posting accepts new applications
	JobStatusActive = "active"
	// JobStatusClosed indicates the recruiter closed the posting manually
	JobStatusClosed = "closed"
	// JobStatusExpired indicates the posting passed its expiry date
	JobStatusExpired = "expired"
)

// EditableJobInfo is the part of a job posting that recruiters can edit.
type EditableJobInfo struct {
	Title       string         `gorm:"type:text" json:"title"`
	Company     string         `gorm:"type:text" json:"company"`
	Department  string         `gorm:"type:text" json:"department"`
	Desc        string         `gorm:"type:text" json:"desc"`
	Req         string         `gorm:"type:text" json:"req"`
	Skills      pq.StringArray `gorm:"type:text[]" json:"skills"`
	ExpLvl      string         `gorm:"type:text" json:"exp_lvl"`
	Location    string         `gorm:"type:text" json:"location"`
	Type        string         `gorm:"type:text" json:"type"`
	Salary      string         `gorm:"type:text" json:"salary"`
	Expiring    *time.Time     `gorm:"type:timestamp" json:"expiring,omitempty"`
}

// JobPosting is gorm model for a job post. Applications are embedded as a
// single JSON document column, so every applicant-list mutation is a
// whole-document read-modify-write guarded by the Revision token.
type JobPosting struct {
	ID          uint          `gorm:"primaryKey;autoIncrement;->" json:"id"`
	RecruiterID uuid.UUID     `gorm:"type:uuid;not null;index;<-:create" json:"recruiter_id"`
	Recruiter   RecruiterUser `gorm:"foreignKey:RecruiterID;references:UserID" json:"-"`
	EditableJobInfo
	Status   string    `gorm:"type:text;default:'active'" json:"status"`
	PostTime time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"post_time"`

	// Revision is the optimistic-concurrency token for the applications
	// document. Writers must match the revision they read or retry.
	Revision     int64           `gorm:"not null;default:0" json:"revision"`
	Applications ApplicationList `gorm:"type:jsonb;default:'[]'" json:"applications"`
}

// ApplicationList stores the embedded applicant documents as one jsonb value.
type ApplicationList []Application

// Value implements driver.Valuer so gorm writes the list as jsonb.
func (l ApplicationList) Value() (interface{}, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner so gorm reads the jsonb column back.
func (l *ApplicationList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	}
	return json.Unmarshal(b, l)
}

// FindApplication returns the embedded application for the given applicant,
// or nil when the applicant never applied to this posting.
func (j *JobPosting) FindApplication(applicantID uuid.UUID) *Application {
	for i := range j.Applications {
		if j.Applications[i].ApplicantID == applicantID {
			return &j.Applications[i]
		}
	}
	return nil
}

// Expired reports whether the posting is past its expiry date.
func (j *JobPosting) Expired() bool {
	return j.Expiring != nil && j.Expiring.Before(time.Now())
}
