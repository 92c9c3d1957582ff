package httphandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Meritocracy</title></head>
<body>
%s
</body>
</html>
`

// renderMarkdown converts a markdown string to sanitized HTML. Logins come
// from GitHub, so the output is always passed through the UGC policy.
func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// meritocracyMarkdown lays out the meritocracy as a markdown document with
// one linked profile per member.
func meritocracyMarkdown(repo string, members []string, computedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Meritocracy of %s\n\n", repo)
	if len(members) == 0 {
		b.WriteString("The meritocracy is empty.\n")
	} else {
		fmt.Fprintf(&b, "%d members can satisfy the review gate:\n\n", len(members))
		for _, login := range members {
			fmt.Fprintf(&b, "- [@%s](https://github.com/%s)\n", login, login)
		}
	}
	if !computedAt.IsZero() {
		fmt.Fprintf(&b, "\n_Computed %s._\n", computedAt.UTC().Format(time.RFC1123))
	}

	return b.String()
}

// MeritocracyPage renders the current meritocracy as an HTML page.
func (h *Handler) MeritocracyPage(w http.ResponseWriter, _ *http.Request) {
	result, _, at, ok := h.cycles.LastResult()
	if !ok {
		http.Error(w, "no cycle has run yet", http.StatusServiceUnavailable)
		return
	}

	body := renderMarkdown(meritocracyMarkdown(h.repo, result.Meritocracy, at))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, pageShell, body)
}
