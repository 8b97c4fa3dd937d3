// Package ai wraps the external AI text-generation API used for candidate
// screening and offer-letter drafting. Every call follows the same shape:
// build a prompt with a strict JSON response contract, call the API once,
// parse the typed result.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
	openai "github.com/sashabaranov/go-openai"

	"HireSight-backend/internal/model"
	"HireSight-backend/internal/screening"
)

// Client talks to the AI API for all screening and generation calls.
type Client struct {
	client *openai.Client
	model  string
}

// NewClientFromEnv builds a Client from OPENAI_API_KEY and OPENAI_MODEL.
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	modelName := os.Getenv("OPENAI_MODEL")
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	return &Client{
		client: openai.NewClient(apiKey),
		model:  modelName,
	}, nil
}

// screeningResponse is the strict JSON contract the scoring prompt demands.
type screeningResponse struct {
	Success        bool    `json:"success"`
	Score          float64 `json:"score"`
	Confidence     float64 `json:"confidence"`
	Explanation    string  `json:"explanation"`
	Recommendation string  `json:"recommendation"`
	Breakdown      struct {
		SkillsMatch         float64 `json:"skills_match"`
		ExperienceRelevance float64 `json:"experience_relevance"`
		PracticalExposure   float64 `json:"practical_exposure"`
		Education           float64 `json:"education"`
	} `json:"breakdown"`
	Strengths   []string `json:"strengths"`
	Concerns    []string `json:"concerns"`
	DataQuality string   `json:"data_quality"`
}

// Score evaluates one candidate against one job with a single API call.
func (c *Client) Score(ctx context.Context, req screening.ScoreRequest) (*model.AIScreening, error) {

	prompt := buildScoringPrompt(req)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert technical recruiter. You must respond only with valid JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI scoring API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI scoring API")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var parsed screeningResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("AI scoring did not report success: %s", parsed.Explanation)
	}

	return &model.AIScreening{
		Score:          parsed.Score,
		Confidence:     parsed.Confidence,
		Explanation:    parsed.Explanation,
		Recommendation: normalizeRecommendation(parsed.Recommendation),
		Breakdown: model.ScoreBreakdown{
			SkillsMatch:         parsed.Breakdown.SkillsMatch,
			ExperienceRelevance: parsed.Breakdown.ExperienceRelevance,
			PracticalExposure:   parsed.Breakdown.PracticalExposure,
			Education:           parsed.Breakdown.Education,
		},
		Strengths:   parsed.Strengths,
		Concerns:    parsed.Concerns,
		DataQuality: parsed.DataQuality,
		ScoredAt:    time.Now(),
	}, nil
}

func buildScoringPrompt(req screening.ScoreRequest) string {
	cand := req.Candidate

	expectedSalary := "Not provided"
	if cand.ExpectedSalary != nil {
		expectedSalary = fmt.Sprintf("%.0f", *cand.ExpectedSalary)
	}

	resumeSection := "No resume text available. Score on the structured profile alone and reflect the reduced evidence in data_quality."
	if req.ResumeText != "" {
		resumeSection = req.ResumeText
	}

	return fmt.Sprintf(`You are screening a job applicant. Evaluate how well the candidate fits the job.

CANDIDATE PROFILE:
- Name: %s
- Experience: %s
- Location availability: %s
- Skills: %s
- Education: %s
- Expected salary: %s
- Links: linkedin=%s portfolio=%s github=%s
- Cover letter: %s

JOB PROFILE:
- Title: %s
- Company: %s
- Department: %s
- Required skills: %s
- Experience requirement: %s
- Location: %s
- Type: %s
- Salary: %s
- Requirements: %s
- Description: %s

RESUME TEXT:
%s

SCORING RULES:
- score and every breakdown value are 0-100.
- Weight the overall score as: skills match 50%%, experience relevance 30%%, practical exposure 10%%, education 10%%.
- confidence (0-100) reflects how much evidence you actually had; thin profiles and missing resumes lower confidence.
- recommendation is exactly one of: "strong-match", "good-match", "consider", "not-recommended".
- Note missing or contradictory data in data_quality.

Respond ONLY with a valid JSON object in this exact format:
{
  "success": true,
  "score": 0-100,
  "confidence": 0-100,
  "explanation": "two or three sentences on the overall fit",
  "recommendation": "strong-match" or "good-match" or "consider" or "not-recommended",
  "breakdown": {
    "skills_match": 0-100,
    "experience_relevance": 0-100,
    "practical_exposure": 0-100,
    "education": 0-100
  },
  "strengths": ["..."],
  "concerns": ["..."],
  "data_quality": "notes on missing or low-quality input data"
}`,
		cand.FullName,
		orNotProvided(cand.Experience),
		orNotProvided(cand.Availability),
		strings.Join(cand.Skills, ", "),
		orNotProvided(cand.Education),
		expectedSalary,
		orNotProvided(cand.LinkedIn),
		orNotProvided(cand.Portfolio),
		orNotProvided(cand.GitHub),
		orNotProvided(cand.CoverLetter),
		req.Job.Title,
		req.Job.Company,
		orNotProvided(req.Job.Department),
		strings.Join(req.Job.Skills, ", "),
		orNotProvided(req.Job.ExpLvl),
		orNotProvided(req.Job.Location),
		orNotProvided(req.Job.Type),
		orNotProvided(req.Job.Salary),
		orNotProvided(req.Job.Req),
		orNotProvided(req.Job.Desc),
		resumeSection,
	)
}

// normalizeRecommendation maps loose model output onto the known categories.
func normalizeRecommendation(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case model.RecommendStrongMatch:
		return model.RecommendStrongMatch
	case model.RecommendGoodMatch:
		return model.RecommendGoodMatch
	case model.RecommendConsider:
		return model.RecommendConsider
	case model.RecommendNotRecommended:
		return model.RecommendNotRecommended
	default:
		return model.RecommendConsider
	}
}

// stripCodeFence removes a markdown fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
