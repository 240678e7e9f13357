package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
jwt:
  secret: cli-test-secret
security:
  encryption_key: cli-test-key
  bcrypt_cost: 4
log:
  level: error
backup:
  dir: %s
`, filepath.Join(dir, "kos.db"), filepath.Join(dir, "backups"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "reconcile", "remind"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestMigrateThenReconcileAndRemind(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "kos.db"))

	out, err := run(t, "--config", path, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "0 payment(s) marked overdue")

	out, err = run(t, "--config", path, "remind", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "0 reminder(s) sent")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "migrate")
	assert.Error(t, err)
}
