package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xenocrm/crm-gateway/internal/errs"
	"github.com/xenocrm/crm-gateway/internal/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

const queryPromptFmt = `Convert the following natural language description into a valid MongoDB query object using **only the following fields** from the Customer schema:

- name (string)
- email (string)
- phone (string)
- joinedAt (ISO 8601 date string)
- totalSpend (number)
- visitCount (number)
- lastActive (ISO 8601 date string)

Ensure:
1. All dates are ISO 8601 formatted strings.
2. The output is raw, valid JSON (no shell syntax, no markdown, no ` + "```" + `).
3. Return only the JSON object, nothing else.

Natural language: "%s"`

var (
	lastNDaysRe = regexp.MustCompile(`(?i)last (\d+) days`)
	fenceRe     = regexp.MustCompile("```json|```")
	isoDateRe   = regexp.MustCompile(`ISODate\("([^"]+)"\)`)
)

// rewriteLastNDays replaces the first "last N days" phrase with an explicit
// after-this-timestamp constraint anchored at now. Purely textual; happens
// once, before generation.
func rewriteLastNDays(prompt string, now time.Time) string {
	m := lastNDaysRe.FindStringSubmatch(prompt)
	if m == nil {
		return prompt
	}

	days, err := strconv.Atoi(m[1])
	if err != nil {
		return prompt
	}

	bound := now.AddDate(0, 0, -days).UTC().Format(time.RFC3339)
	return strings.Replace(prompt, m[0], fmt.Sprintf("after %q", bound), 1)
}

// cleanGeneratedJSON strips markdown fences and unwraps ISODate("...") calls
// the model sometimes emits despite instructions.
func cleanGeneratedJSON(raw string) string {
	s := fenceRe.ReplaceAllString(raw, "")
	s = isoDateRe.ReplaceAllString(s, `"$1"`)
	return strings.TrimSpace(s)
}

// reviveDates walks a decoded query and converts ISO-8601 date strings into
// time values so comparisons hit the stored BSON dates. (The original stack
// leaned on ORM schema casting for this.)
func reviveDates(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := bson.M{}
		for k, vv := range t {
			out[k] = reviveDates(vv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = reviveDates(t[i])
		}
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
		return t
	default:
		return v
	}
}

// BuildQuery turns a natural-language customer filter into a document-store
// predicate. The field list is closed; dates are rewritten relative to the
// request time; any failure surfaces as a TranslationError with no retry.
func (c *Client) BuildQuery(ctx context.Context, rules string) (bson.M, error) {
	if strings.TrimSpace(rules) == "" {
		return nil, errs.Validation("rules text is required to generate a query")
	}

	prompt := fmt.Sprintf(queryPromptFmt, rewriteLastNDays(rules, c.now()))

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		return nil, errs.Translation(err, "rule translation failed")
	}

	cleaned := cleanGeneratedJSON(raw)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		return nil, errs.Translation(err, "generated query is not valid JSON")
	}

	query, ok := reviveDates(decoded).(bson.M)
	if !ok {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		return nil, errs.Translation(nil, "generated query is not an object")
	}

	metrics.TranslationsTotal.WithLabelValues("ok").Inc()
	return query, nil
}
