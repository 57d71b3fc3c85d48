package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
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

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

var variableLabels = map[model.Variable]string{
	model.VariableSize:         "Size (additions + deletions)",
	model.VariableBodyLength:   "Description length",
	model.VariableParticipants: "Participants",
	model.VariableHumanReviews: "Human reviews",
	model.VariableReviewHours:  "Review hours",
}

func label(v model.Variable) string {
	if l, ok := variableLabels[v]; ok {
		return l
	}
	return string(v)
}

// Markdown renders the analysis as a markdown document with GFM tables.
func Markdown(a model.Analysis) string {
	var b strings.Builder

	b.WriteString("# Pull request review study\n\n")
	if !a.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated %s.\n\n", a.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	b.WriteString("## Dataset\n\n")
	fmt.Fprintf(&b, "- Pull requests: %d\n", a.Records)
	fmt.Fprintf(&b, "- Repositories: %d\n", a.Repositories)
	fmt.Fprintf(&b, "- Merged: %d\n", a.Merged)
	fmt.Fprintf(&b, "- Closed without merge: %d\n\n", a.Closed)

	if a.Records == 0 {
		b.WriteString("The dataset is empty; no statistics were computed.\n")
		return b.String()
	}

	b.WriteString("## Correlations\n\n")
	b.WriteString("| Characteristic | Outcome | N | Spearman rho | p | Pearson r | p |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, c := range a.Correlations {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s |\n",
			label(c.X), label(c.Y), c.N,
			formatCoefficient(c.Spearman), formatP(c.SpearmanP),
			formatCoefficient(c.Pearson), formatP(c.PearsonP),
		)
	}

	b.WriteString("\n## Merged vs. closed\n\n")
	b.WriteString("Mann-Whitney U test, normal approximation with tie correction.\n\n")
	b.WriteString("| Variable | Merged N | Merged median | Closed N | Closed median | U | z | p |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, g := range a.Comparisons {
		fmt.Fprintf(&b, "| %s | %d | %s | %d | %s | %s | %s | %s |\n",
			label(g.Variable),
			g.MergedN, formatNumber(g.MergedMedian),
			g.ClosedN, formatNumber(g.ClosedMedian),
			formatNumber(g.U), formatCoefficient(g.Z), formatP(g.P),
		)
	}

	return b.String()
}

func formatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func formatP(p float64) string {
	switch {
	case math.IsNaN(p):
		return "n/a"
	case p < 0.0001:
		return "< 0.0001"
	default:
		return fmt.Sprintf("%.4f", p)
	}
}
