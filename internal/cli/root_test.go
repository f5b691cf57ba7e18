package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/ir"
)

// response mirrors CLIResponse with the payload left raw.
type response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// execute runs the full command tree and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decode parses a JSON CLI response and unmarshals its payload into data
// when data is non-nil.
func decode(t *testing.T, out string, data any) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if data != nil {
		require.NotEmpty(t, resp.Data, out)
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "craftforge", cmd.Use)
	assert.Equal(t, ir.EngineVersion, cmd.Version)
	assert.Contains(t, cmd.Long, "crafting guides")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"actions", "validate", "run", "share", "import", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	defaults := map[string]string{
		"catalog":        "",
		"seed":           "0",
		"max-steps":      "100",
		"max-iterations": "10",
		"log-level":      "info",
		"log-format":     "text",
	}
	for name, want := range defaults {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.DefValue, name)
	}
}

func TestGlobalFlags_DefaultsFromEnvironment(t *testing.T) {
	t.Setenv("CRAFTFORGE_MAX_STEPS", "7")
	t.Setenv("CRAFTFORGE_SEED", "42")

	cmd := NewRootCommand()
	assert.Equal(t, "7", cmd.PersistentFlags().Lookup("max-steps").DefValue)
	assert.Equal(t, "42", cmd.PersistentFlags().Lookup("seed").DefValue)
}

func TestRootCommand_InvalidEnvironment(t *testing.T) {
	t.Setenv("CRAFTFORGE_LOG_FORMAT", "xml")

	_, err := execute(t, "actions")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := execute(t, "actions", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_InvalidFlagOverride(t *testing.T) {
	_, err := execute(t, "actions", "--max-steps", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "max steps must be positive")
}

func TestRootCommand_VerboseLogsToStderr(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(logs)
	cmd.SetArgs([]string{"actions", "--verbose", "--log-format", "json"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, logs.String(), `"msg":"action registered"`)
	assert.NotContains(t, out.String(), "action registered")
}

func TestRootOptions_LoggerFallback(t *testing.T) {
	opts := &RootOptions{}
	assert.NotNil(t, opts.logger())
}
