package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	subject, text, html, err := Render(TemplateWelcome, map[string]any{"Name": "Ada"})
	require.NoError(t, err)

	assert.NotEmpty(t, subject)
	assert.Contains(t, text, "Hi Ada")
	assert.Contains(t, html, "Hi Ada")
}

func TestRenderSnapshotReceipt(t *testing.T) {
	_, text, html, err := Render(TemplateSnapshotReceipt, map[string]any{
		"Name":     "Ada",
		"Date":     "30 Aug 2026",
		"Currency": "£",
		"NetWorth": "1234.56",
	})
	require.NoError(t, err)

	assert.Contains(t, text, "30 Aug 2026")
	assert.Contains(t, text, "£1234.56")
	assert.Contains(t, html, "<strong>£1234.56</strong>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}
