package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xenocrm/crm-gateway/internal/errs"
)

const suggestTemplatePromptFmt = `You are a marketing assistant AI. Given a campaign title and a customer segment description, generate a short and engaging message template for a campaign.
Use a tone that suits promotional content, and feel free to include personalization tokens like {{name}} or {{totalSpend}}.

- Campaign Title: "%s"
- Target Segment: "%s"

Output format:
Just return the message template (no markdown, no extra info). Keep it friendly, actionable, and 1-2 sentences long.`

// SuggestTemplate returns raw generated text, trimmed. Unlike BuildQuery and
// BuildCampaignMessage there is no structured parsing here.
func (c *Client) SuggestTemplate(ctx context.Context, title, segment string) (string, error) {
	if title == "" {
		return "", errs.Validation("campaign title is required to generate a message template")
	}
	if segment == "" {
		return "", errs.Validation("segment description is required to generate a message template")
	}

	raw, err := c.generate(ctx, fmt.Sprintf(suggestTemplatePromptFmt, title, segment))
	if err != nil {
		return "", errs.Generation(err, "template suggestion failed")
	}

	tpl := strings.TrimSpace(raw)
	if tpl == "" {
		return "", errs.Generation(nil, "generation service returned an empty template")
	}

	return tpl, nil
}
