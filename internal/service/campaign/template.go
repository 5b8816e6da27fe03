package campaign

import (
	"fmt"
	"strings"

	"github.com/xenocrm/crm-gateway/internal/model"
)

// RenderTemplate substitutes {{token}} placeholders with customer fields.
// Unknown tokens are left untouched so a bad template stays visible in the
// delivered message instead of silently vanishing.
func RenderTemplate(template string, c *model.Customer) string {
	replacements := map[string]string{
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"totalSpend": fmt.Sprintf("%g", c.TotalSpend),
		"visitCount": fmt.Sprintf("%d", c.VisitCount),
	}

	out := template
	for token, value := range replacements {
		out = strings.ReplaceAll(out, "{{"+token+"}}", value)
	}
	return out
}
