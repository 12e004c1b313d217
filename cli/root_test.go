package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/records-engine/config"
)

// execute runs the command tree with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Chdir(t.TempDir())

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "crm", cmd.Use)
	assert.Contains(t, cmd.Long, config.EnvConfigPath)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "seed", "schema"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("driver"))
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)

	nFlag := seedCmd.Flags().Lookup("n")
	require.NotNil(t, nFlag)
	assert.Equal(t, "100", nFlag.DefValue)
}

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: from-file.db\n  driver: modernc\n"), 0o644))

	opts := &RootOptions{ConfigPath: path, DBPath: "from-flag.db"}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-flag.db", cfg.Database.Path)
	assert.Equal(t, config.DriverModernc, cfg.Database.Driver, "file value kept when no flag is given")
}

func TestLoadConfig_InvalidDriverFlag(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	t.Chdir(t.TempDir())

	opts := &RootOptions{Driver: "postgres"}
	_, err := opts.loadConfig()

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	opts := &RootOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}
	_, err := opts.loadConfig()

	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w",
		WrapExitError(ExitCommandError, "bad", nil))))
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestSeedAndSchemaCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "crm.db")

	out, err := execute(t, "seed", "--db", db, "--n", "12", "--seed", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "created 10/12 clients")
	assert.Contains(t, out, "Created 12 clients, 12 deals, 12 tasks")

	out, err = execute(t, "schema", "--db", db, "--driver", config.DriverModernc)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Schema ready")
	assert.Regexp(t, `parties\s+12`, out)
	assert.Regexp(t, `action_items\s+12`, out)
}

func TestSchemaCommand_UnusableDatabase(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := execute(t, "schema", "--db", filepath.Join(blocker, "crm.db"))

	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "crm.db")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln) }()

	// GIVEN: a running server
	url := "http://" + ln.Addr().String()
	resp, err := http.Post(url+"/api/clients", "application/json", bytes.NewBufferString(`{"name": "Anna"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(url + "/healthz")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])

	// WHEN: the context is cancelled
	cancel()

	// THEN: serve returns cleanly
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
