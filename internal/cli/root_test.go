package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/db"
	"flowerShopCRM/internal/testutil"
	"flowerShopCRM/repository"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

// isolate points the config at a fresh database and a known secret.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"LOG_LEVEL", "LOG_FILE", "KAFKA_BROKERS", "KAFKA_TOPIC", "LOCALE", "GRPC_ADDRESS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	path := filepath.Join(t.TempDir(), "crm.db")
	t.Setenv("DB_PATH", path)
	t.Setenv("JWT_SECRET", "cli-secret")
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "flowercrm", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"serve"}, {"migrate", "status"}, {"migrate", "rollback"}, {"token"}, {"statuses"}} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	_, err := execute(t, "statuses", "--locale", "en", "--format", "yaml")
	assert.Error(t, err)
}

func TestTokenCommand_RegistersStaff(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "token", "kate", "--role", "manager", "--register")
	require.NoError(t, err)
	tok := strings.TrimSpace(out)

	p, err := auth.ParseFromMD(testutil.CtxWithBearer(context.Background(), tok), "cli-secret")
	require.NoError(t, err)
	assert.Equal(t, "kate", p.Name)
	assert.Equal(t, "manager", p.Role)

	d, err := db.Open(path)
	require.NoError(t, err)
	defer d.Close()
	s, err := repository.NewStaffRepository(d).GetByUsername(context.Background(), "kate")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "manager", s.Role)

	_, err = execute(t, "token", "kate", "--role", "owner")
	assert.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	isolate(t)

	out, err := execute(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "0001  init        applied")
	assert.Contains(t, out, "0002  audits      applied")

	out, err = execute(t, "migrate", "rollback")
	require.NoError(t, err)
	assert.Equal(t, "rolled back 0002\n", out)
}
