package anchors_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/interlinker/cmd/anchors"
	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := anchors.Command()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestGenerate_JSON(t *testing.T) {
	t.Parallel()

	out := execute(t, "generate", "Keyword", "Research", "Fundamentals", "Guide", "--max", "2", "--json")

	var got []domain.AnchorCandidate
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Keyword Research Fundamentals", got[0].Phrase)
}

func TestGenerate_NoCandidates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no candidates\n", execute(t, "generate", "SEO Tips"))
}

func TestValidate_Table(t *testing.T) {
	t.Parallel()

	out := execute(t, "validate", "click here")
	assert.Contains(t, out, "rejected")
	assert.Contains(t, out, "false")
}

func TestValidate_JSON(t *testing.T) {
	t.Parallel()

	out := execute(t, "validate", "Google Search Ranking Factors 2024", "--json")

	var v domain.AnchorValidation
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.True(t, v.Valid)
	assert.Equal(t, 98, v.Score)
}
