package httphandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", renderMarkdown(""))
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := renderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := renderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestMeritocracyMarkdown(t *testing.T) {
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	md := meritocracyMarkdown("chaos/chaos", []string{"alice", "bob"}, at)
	assert.Contains(t, md, "# Meritocracy of chaos/chaos")
	assert.Contains(t, md, "2 members")
	assert.Contains(t, md, "- [@alice](https://github.com/alice)")
	assert.Contains(t, md, "Tue, 10 Feb 2026")

	html := renderMarkdown(md)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<li>")
}

func TestMeritocracyMarkdown_Empty(t *testing.T) {
	md := meritocracyMarkdown("chaos/chaos", nil, time.Time{})
	assert.Contains(t, md, "The meritocracy is empty.")
	assert.NotContains(t, md, "Computed")
}
