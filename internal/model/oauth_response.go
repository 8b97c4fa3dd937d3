package model

// GoogleUserInfo is the decoded userinfo payload from the Google endpoint.
type GoogleUserInfo struct {
	GID       string `json:"sub"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Email     string `json:"email"`
}

// CandidateResponse struct holds the response data for candidate user login or registration
type CandidateResponse struct {
	User        CandidateUser `json:"user"`
	AccessToken string        `json:"access_token"`
}

// RecruiterResponse struct holds the response data for recruiter user login or registration
type RecruiterResponse struct {
	User        RecruiterUser `json:"user"`
	AccessToken string        `json:"access_token"`
}
