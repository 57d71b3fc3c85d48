package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_Table(t *testing.T) {
	result := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |\n")
	assert.Contains(t, result, "<table>")
	assert.Contains(t, result, "<th>a</th>")
	assert.Contains(t, result, "<td>2</td>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestFormatP(t *testing.T) {
	assert.Equal(t, "n/a", formatP(math.NaN()))
	assert.Equal(t, "< 0.0001", formatP(0.00001))
	assert.Equal(t, "0.0809", formatP(0.08086))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "n/a", formatNumber(math.NaN()))
	assert.Equal(t, "42", formatNumber(42))
	assert.Equal(t, "2.50", formatNumber(2.5))
}
