package genai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xenocrm/crm-gateway/internal/errs"
)

const campaignMessagePromptFmt = `You're an expert marketing assistant. Create a short, personalized campaign message based on the following inputs:

Segment Name: "%s"
Rules (described in natural language): "%s"
Customer Name: "%s"

Instructions:
1. Use the customer's name in the greeting.
2. Keep the message clear, concise, and tailored to the segment rules.
3. Output must be a raw JSON object with this structure:

{
  "title": "Campaign Title",
  "message": "Personalized message content",
  "goal": "Optional - describe the campaign's goal in one sentence"
}

Return only the JSON, no markdown or explanation.`

// CampaignMessage is the structured personalization result; only Message ends
// up in the delivery log, but the full shape is kept for callers that want it.
type CampaignMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Goal    string `json:"goal,omitempty"`
}

// BuildCampaignMessage generates one personalized message for one customer.
func (c *Client) BuildCampaignMessage(ctx context.Context, segmentName, rulesDescription, customerName string) (CampaignMessage, error) {
	if segmentName == "" || rulesDescription == "" || customerName == "" {
		return CampaignMessage{}, errs.Validation("segmentName, rulesDescription, and customerName are all required")
	}

	prompt := fmt.Sprintf(campaignMessagePromptFmt, segmentName, rulesDescription, customerName)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return CampaignMessage{}, errs.Generation(err, "campaign message generation failed")
	}

	var msg CampaignMessage
	if err := json.Unmarshal([]byte(cleanGeneratedJSON(raw)), &msg); err != nil {
		return CampaignMessage{}, errs.Generation(err, "generated campaign message is not valid JSON")
	}
	if msg.Message == "" {
		return CampaignMessage{}, errs.Generation(nil, "generated campaign message is empty")
	}

	return msg, nil
}
