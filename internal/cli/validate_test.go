package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidGuide(t *testing.T) {
	out, err := execute(t, "validate", "testdata/guides/scrap.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/guides/scrap.yaml")
	assert.Contains(t, out, "✓ All valid")
}

func TestValidate_ValidGuideJSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/guides/scrap.yaml", "--format", "json")
	require.NoError(t, err)

	var result ValidateResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Guides, 1)
	assert.True(t, result.Guides[0].Valid)
	assert.Equal(t, "Scrap to cap", result.Guides[0].Title)
	assert.Zero(t, result.Invalid)
}

func TestValidate_CollectsEveryFinding(t *testing.T) {
	out, err := execute(t, "validate", "testdata/guides/invalid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ testdata/guides/invalid.yaml")
	assert.Contains(t, out, "[E300] title")
	assert.Contains(t, out, "[E312]")
	assert.Contains(t, out, "[E200] startingItem.baseType")
	assert.Contains(t, out, "[E207] startingItem.itemLevel")
	assert.NotContains(t, out, "All valid")
}

func TestValidate_InvalidGuideJSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/guides/scrap.yaml", "testdata/guides/invalid.yaml", "--format", "json")
	require.Error(t, err)

	resp := decode(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidGuide, resp.Error.Code)
	assert.Equal(t, "1 guide(s) invalid", resp.Error.Message)
}

func TestValidate_CatalogActionsResolve(t *testing.T) {
	// polish.yaml uses an action only the catalog defines.
	_, err := execute(t, "validate", "testdata/guides/polish.yaml")
	require.Error(t, err)

	out, err := execute(t, "validate", "--catalog", "testdata/catalog/polish.cue", "testdata/guides/polish.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Catalog valid (1 action(s))")
	assert.Contains(t, out, "✓ testdata/guides/polish.yaml")
}

func TestValidate_CatalogOnly(t *testing.T) {
	out, err := execute(t, "validate", "--catalog", "testdata/catalogs/split")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Catalog valid (2 action(s))")
}

func TestValidate_InvalidCatalog(t *testing.T) {
	out, err := execute(t, "validate", "--catalog", "testdata/catalog/bad.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[E101] actions[0].name")
	assert.Contains(t, out, "[E102]")
}

func TestValidate_NothingToValidate(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "nothing to validate")
}

func TestValidate_MissingFile(t *testing.T) {
	out, err := execute(t, "validate", "testdata/guides/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidate_ShareEnvelope(t *testing.T) {
	dir := t.TempDir()
	envelope := dir + "/scrap.share.json"
	_, err := execute(t, "share", "testdata/guides/scrap.yaml", "-o", envelope)
	require.NoError(t, err)

	out, err := execute(t, "validate", envelope, "--format", "json")
	require.NoError(t, err)

	var result ValidateResult
	decode(t, out, &result)
	require.Len(t, result.Guides, 1)
	assert.True(t, result.Guides[0].Shared)
	assert.True(t, result.Guides[0].Valid)
}
