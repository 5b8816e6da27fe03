package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xenocrm/crm-gateway/internal/model"
)

func TestRenderTemplate(t *testing.T) {
	c := &model.Customer{
		Name:       "Ali",
		Email:      "ali@example.com",
		Phone:      "+989121234567",
		TotalSpend: 12500.5,
		VisitCount: 7,
	}

	t.Run("substitutes all known tokens", func(t *testing.T) {
		got := RenderTemplate("Hi {{name}} ({{email}}, {{phone}}): {{totalSpend}} over {{visitCount}} visits", c)
		assert.Equal(t, "Hi Ali (ali@example.com, +989121234567): 12500.5 over 7 visits", got)
	})

	t.Run("unknown tokens stay visible", func(t *testing.T) {
		got := RenderTemplate("Hi {{name}}, your {{discount}} awaits", c)
		assert.Equal(t, "Hi Ali, your {{discount}} awaits", got)
	})

	t.Run("repeated tokens", func(t *testing.T) {
		got := RenderTemplate("{{name}} {{name}}", c)
		assert.Equal(t, "Ali Ali", got)
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.Equal(t, "plain text", RenderTemplate("plain text", c))
	})
}
