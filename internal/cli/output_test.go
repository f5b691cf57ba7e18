package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data, nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "catalog failed to compile", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "catalog failed to compile", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "catalog.cue", "line": "42"}
	err := formatter.Error("E002", "syntax error", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("All valid", nil)
	require.NoError(t, err)
	assert.Equal(t, "All valid\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "catalog failed to compile", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "catalog failed to compile")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "catalog.cue"}
	err := formatter.Error("E001", "catalog failed to compile", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Validating guide: %s", "guide.yaml")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Validating guide: guide.yaml")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    ErrCodeInvalidCatalog,
		Message: "catalog is invalid",
		Details: []string{"actions[0].name: action name is required"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E011", decoded.Code)
	assert.Equal(t, "catalog is invalid", decoded.Message)
}

func TestOutputFormatter_TextSuccessRender(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Success(map[string]int{"count": 2}, func(w io.Writer) {
		fmt.Fprintln(w, "2 action(s)")
	})
	require.NoError(t, err)
	assert.Equal(t, "2 action(s)\n", buf.String())
}

func TestOutputFormatter_JSONIgnoresRender(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]int{"count": 2}, func(w io.Writer) {
		fmt.Fprintln(w, "never written")
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "never written")
	assert.Contains(t, buf.String(), `"count": 2`)
}

func TestOutputFormatter_Invalid(t *testing.T) {
	errs := []ir.ValidationError{
		{Field: "title", Message: "title is required", Code: "E300"},
		{Field: "steps[0].actionId", Message: "unknown action", Code: "E312"},
	}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, formatter.Invalid(ErrCodeInvalidGuide, "guide is invalid", errs))
		assert.Contains(t, buf.String(), "✗ guide is invalid")
		assert.Contains(t, buf.String(), "[E300] title: title is required")
		assert.Contains(t, buf.String(), "[E312] steps[0].actionId: unknown action")
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Invalid(ErrCodeInvalidGuide, "guide is invalid", errs))

		var resp struct {
			Status string `json:"status"`
			Error  struct {
				Code    string               `json:"code"`
				Details []ir.ValidationError `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, ErrCodeInvalidGuide, resp.Error.Code)
		assert.Equal(t, errs, resp.Error.Details)
	})
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("Catalog: %d action(s)", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "Catalog: 3 action(s)\n", diag.String())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "missing file"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("run: %w", WrapExitError(ExitFailure, "guide failed", errors.New("step s1"))), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "missing file", NewExitError(ExitCommandError, "missing file").Error())

	cause := errors.New("step s1 failed")
	err := WrapExitError(ExitFailure, "guide run failed", cause)
	assert.Equal(t, "guide run failed: step s1 failed", err.Error())
	assert.ErrorIs(t, err, cause)
}
