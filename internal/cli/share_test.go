package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/craftforge/internal/guide"
)

func TestShare_Stdout(t *testing.T) {
	out, err := execute(t, "share", "testdata/guides/scrap.yaml")
	require.NoError(t, err)

	var env guide.ShareEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, guide.ShareType, env.Type)
	assert.Equal(t, guide.ShareVersion, env.Version)
	assert.Empty(t, env.Guide.ID)
	assert.Len(t, env.Guide.ShareID, 16)
	assert.Equal(t, "Scrap to cap", env.Guide.Title)
	assert.False(t, env.ExportedAt.IsZero())
}

func TestShare_IDIsContentDerived(t *testing.T) {
	first, err := execute(t, "share", "testdata/guides/scrap.yaml", "--format", "json")
	require.NoError(t, err)
	second, err := execute(t, "share", "testdata/guides/scrap.yaml", "--format", "json")
	require.NoError(t, err)

	var a, b ShareResult
	decode(t, first, &a)
	decode(t, second, &b)
	assert.Equal(t, a.ShareID, b.ShareID)
	require.NotNil(t, a.Envelope)
	assert.Equal(t, a.ShareID, a.Envelope.Guide.ShareID)
}

func TestShare_YAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrap.share.yaml")
	out, err := execute(t, "share", "testdata/guides/scrap.yaml", "-o", path, "--encoding", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Shared "Scrap to cap" as `)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, guide.ShareType, raw["type"])
}

func TestShare_InvalidGuide(t *testing.T) {
	out, err := execute(t, "share", "testdata/guides/invalid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[E300]")
}

func TestShare_InvalidEncoding(t *testing.T) {
	out, err := execute(t, "share", "testdata/guides/scrap.yaml", "--encoding", "toml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `invalid encoding "toml"`)
}

func TestImport_ShareEnvelopeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	envelope := filepath.Join(dir, "scrap.share.json")
	_, err := execute(t, "share", "testdata/guides/scrap.yaml", "-o", envelope)
	require.NoError(t, err)

	out, err := execute(t, "import", envelope, "--format", "json")
	require.NoError(t, err)

	var result ImportResult
	decode(t, out, &result)
	assert.NotEmpty(t, result.GuideID)
	assert.Equal(t, "Scrap to cap", result.Title)
	assert.Equal(t, 2, result.Steps)
	require.NotNil(t, result.Guide)
	assert.Equal(t, result.GuideID, result.Guide.ID)
	assert.False(t, result.Guide.CreatedAt.IsZero())

	// The imported guide keeps its content, so it shares under the same id.
	shared, err := execute(t, "share", envelope, "--format", "json")
	require.NoError(t, err)
	var again ShareResult
	decode(t, shared, &again)

	var original guide.ShareEnvelope
	data, err := os.ReadFile(envelope)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &original))
	assert.Equal(t, original.Guide.ShareID, again.ShareID)
}

func TestImport_ToYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imported.yaml")
	out, err := execute(t, "import", "testdata/guides/scrap.yaml", "-o", path, "--encoding", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Imported "Scrap to cap" (2 step(s))`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	dec, err := guide.Decode(data)
	require.NoError(t, err)
	assert.Nil(t, dec.Envelope)
	assert.NotEmpty(t, dec.Guide.ID)
	assert.Len(t, dec.Guide.Steps, 2)
}

func TestImport_InvalidGuide(t *testing.T) {
	out, err := execute(t, "import", "testdata/guides/invalid.yaml", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidGuide, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "is not a valid guide")
}

func TestImport_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	out, err := execute(t, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}

func TestImport_MissingFile(t *testing.T) {
	_, err := execute(t, "import", "testdata/guides/missing.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
