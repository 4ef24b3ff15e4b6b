package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "boothsync", cmd.Use)
	assert.Contains(t, cmd.Long, "snapshot")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"submit"},
		{"status"},
		{"responses"},
		{"stats"},
		{"export", "snapshot"},
		{"export", "report"},
		{"import"},
		{"clear"},
		{"config", "show"},
		{"config", "set-pin"},
		{"config", "set-stand"},
		{"config", "set-sector"},
		{"config", "products", "add"},
		{"config", "products", "remove"},
		{"config", "load-profile"},
		{"insights"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
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

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, DefaultDatabase, dbFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("pin"))
}

func TestSubmitCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	submitCmd, _, err := cmd.Find([]string{"submit"})
	require.NoError(t, err)

	npsFlag := submitCmd.Flags().Lookup("nps")
	require.NotNil(t, npsFlag)
	assert.Equal(t, "-1", npsFlag.DefValue)

	for _, name := range []string{"first", "last", "email", "role", "interested", "product"} {
		assert.NotNil(t, submitCmd.Flags().Lookup(name), name)
	}
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, kind := range []string{"snapshot", "report"} {
		exportCmd, _, err := cmd.Find([]string{"export", kind})
		require.NoError(t, err)

		outFlag := exportCmd.Flags().Lookup("out")
		require.NotNil(t, outFlag)
		assert.Equal(t, "o", outFlag.Shorthand)
	}
}

func TestInsightsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	insightsCmd, _, err := cmd.Find([]string{"insights"})
	require.NoError(t, err)

	modelFlag := insightsCmd.Flags().Lookup("model")
	require.NotNil(t, modelFlag)
	assert.Equal(t, "gemini-3-flash-preview", modelFlag.DefValue)
	assert.NotNil(t, insightsCmd.Flags().Lookup("api-key"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"--format", "invalid", "--db", MemoryDatabase, "status"}, stdout, stderr)

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "invalid format")
}

func TestEnvFallback(t *testing.T) {
	dbPath := t.TempDir() + "/from-env.db"
	t.Setenv(EnvDatabase, dbPath)

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--env-file", "", "status"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, dbPath)
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := dir + "/dotenv.db"
	envPath := writeFile(t, dir, "booth.env", EnvDatabase+"="+dbPath+"\n")
	t.Setenv(EnvDatabase, "")
	require.NoError(t, os.Unsetenv(EnvDatabase))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--env-file", envPath, "status"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, dbPath)
}
