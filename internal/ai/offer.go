package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OfferRequest carries the structured terms for an offer letter draft.
type OfferRequest struct {
	CandidateName string
	JobTitle      string
	CompanyName   string
	Salary        string
	StartDate     string
	// ExtraTerms is free text the recruiter wants worked into the letter
	ExtraTerms string
}

// GenerateOfferLetter drafts an offer letter body for the given terms. The
// response is plain text, not JSON; the caller stores it verbatim on the
// offer and the recruiter can edit before sending.
func (c *Client) GenerateOfferLetter(ctx context.Context, req OfferRequest) (string, error) {

	prompt := fmt.Sprintf(`Write a professional job offer letter body with these terms:

- Candidate: %s
- Position: %s
- Company: %s
- Salary: %s
- Start date: %s
- Additional terms: %s

Keep it warm but formal, around 200 words. Open with "Dear %s," and close
with a signature line for the %s recruiting team. Respond with the letter
text only, no subject line and no commentary.`,
		req.CandidateName,
		req.JobTitle,
		req.CompanyName,
		orNotProvided(req.Salary),
		orNotProvided(req.StartDate),
		orNotProvided(req.ExtraTerms),
		req.CandidateName,
		req.CompanyName,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write concise, professional hiring documents.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call AI letter API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI letter API")
	}

	return resp.Choices[0].Message.Content, nil
}
