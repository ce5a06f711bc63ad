package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	site, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Kathit Sondhi", site.Hero.Name)
	assert.Len(t, site.Projects, 9)
	assert.Len(t, site.Specializations, 6)
	assert.Len(t, site.Qualifications, 2)
	assert.Equal(t, "Pursuing", site.Qualifications[1].Status)
	assert.Empty(t, site.Qualifications[0].Status)

	p := site.Projects[1]
	assert.Equal(t, 2, p.ID)
	assert.Equal(t, TypeDataVisualization, p.Type)
	assert.Empty(t, p.Details)
	assert.NotEmpty(t, p.ExternalLinkURL)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	data := `
hero:
  name: Test Coach
projects:
  - id: 10
    title: Jump Testing
    type: Analysis
    summary: CMJ battery
    tools: []
    keyInsight: Jump height dropped after heavy sessions.
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	site, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Coach", site.Hero.Name)
	require.Len(t, site.Projects, 1)
	assert.Empty(t, site.Projects[0].Tools)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_DuplicateID(t *testing.T) {
	data := `
projects:
  - {id: 1, title: A, keyInsight: a}
  - {id: 1, title: B, keyInsight: b}
`
	_, err := Parse([]byte(data))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestParse_MissingKeyInsight(t *testing.T) {
	_, err := Parse([]byte("projects:\n  - {id: 1, title: A}\n"))
	assert.ErrorIs(t, err, ErrMissingKeyInsight)
}

func TestParse_MissingTitle(t *testing.T) {
	_, err := Parse([]byte("projects:\n  - {id: 1, keyInsight: x}\n"))
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestParse_UnknownTypeIsAccepted(t *testing.T) {
	site, err := Parse([]byte("projects:\n  - {id: 1, title: A, type: Biomechanics, keyInsight: x}\n"))
	require.NoError(t, err)
	assert.False(t, site.Projects[0].Type.Known())
	assert.Equal(t, defaultStyle, site.Projects[0].Type.Style())
}

func TestProjectTypeStyle(t *testing.T) {
	assert.Equal(t, "border-orange", TypeAnalysis.Style().Border)
	assert.Equal(t, "badge-cyan", TypeDataVisualization.Style().Badge)
	assert.Equal(t, "badge-neutral", ProjectType("").Style().Badge)
	assert.True(t, TypeAnalysis.Known())
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("data-driven **training**"))
	assert.Contains(t, out, "<strong>training</strong>")

	out = string(RenderMarkdown("<script>alert(1)</script>"))
	assert.False(t, strings.Contains(out, "<script>"))
}
