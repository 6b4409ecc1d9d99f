package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/persistence"
	"github.com/sanskruthi/fest-service/internal/qr"
	"github.com/sanskruthi/fest-service/internal/repository"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "festctl", cmd.Use)

	for _, name := range []string{"migrate", "ticket", "scan", "roster"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	ticket, _, err := cmd.Find([]string{"ticket"})
	require.NoError(t, err)
	output := ticket.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "roster", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestScanRequiresFrames(t *testing.T) {
	useSQLite(t)
	_, err := execute(t, "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frames")
}

func TestScanMissingDirectory(t *testing.T) {
	useSQLite(t)
	_, err := execute(t, "scan", "--frames", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera unavailable")
}

func TestMigrate(t *testing.T) {
	useSQLite(t)
	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite store is up to date")
}

func TestTicketRoundTrip(t *testing.T) {
	path := useSQLite(t)
	seed(t, path, "u-1", "Asha Rao")

	target := filepath.Join(t.TempDir(), "asha.png")
	out, err := execute(t, "ticket", "u-1", "-o", target, "--size", "300")
	require.NoError(t, err)
	assert.Contains(t, out, target)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	payload, ok := qr.NewDecoder().Decode(img)
	require.True(t, ok)
	assert.Equal(t, "u-1", payload)

	_, err = execute(t, "ticket", "nobody", "-o", target)
	require.Error(t, err)
}

func TestScanCheckInThenOut(t *testing.T) {
	path := useSQLite(t)
	seed(t, path, "u-1", "Asha Rao")
	seed(t, path, "u-2", "Ravi S")

	frames := t.TempDir()
	writeFrame(t, frames, "01.png", "u-1")
	writeFrame(t, frames, "02.png", "u-2")
	writeFrame(t, frames, "03.png", "u-1")
	require.NoError(t, os.WriteFile(filepath.Join(frames, "notes.txt"), []byte("skip"), 0o644))

	out, err := execute(t, "scan", "--frames", frames, "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully checked in Asha Rao!")
	assert.Contains(t, out, "Successfully checked in Ravi S!")
	assert.Contains(t, out, "Asha Rao is already checked in")
	assert.Contains(t, out, "check-in: 3 resolved, 2 confirmed, 1 rejected, 2 on roster")

	out, err = execute(t, "roster", "--format", "json")
	require.NoError(t, err)
	var roster struct {
		Data  []struct{ UserID string `json:"user_id"` } `json:"data"`
		Count int                                        `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &roster))
	assert.Equal(t, 2, roster.Count)

	checkout := t.TempDir()
	writeFrame(t, checkout, "01.png", "u-1")
	out, err = execute(t, "scan", "--frames", checkout, "--mode", "out", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully checked out Asha Rao!")

	out, err = execute(t, "roster")
	require.NoError(t, err)
	assert.Contains(t, out, "u-2")
	assert.NotContains(t, out, "u-1")
	assert.Contains(t, out, "1 checked in")
}

func TestScanWithoutConfirm(t *testing.T) {
	path := useSQLite(t)
	seed(t, path, "u-1", "Asha Rao")

	frames := t.TempDir()
	writeFrame(t, frames, "01.png", "u-1")

	out, err := execute(t, "scan", "--frames", frames)
	require.NoError(t, err)
	assert.Contains(t, out, "u-1 Asha Rao")
	assert.Contains(t, out, "1 resolved, 0 confirmed")

	out, err = execute(t, "roster")
	require.NoError(t, err)
	assert.Contains(t, out, "0 checked in")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(buf.String()), err
}

// useSQLite points the config at a fresh sqlite file and disables redis.
func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fest.db")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("STORAGE_DRIVER", "local")
	return path
}

func seed(t *testing.T, path, userID, name string) {
	t.Helper()
	db, err := persistence.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	err = repository.NewSQLiteRegistrationRepository(db.DB).Create(context.Background(), &domain.Registration{
		UserID:   userID,
		FullName: name,
		Email:    userID + "@example.com",
		Phone:    "9876543210",
		College:  "Dr. AIT",
	})
	require.NoError(t, err)
}

func writeFrame(t *testing.T, dir, name, payload string) {
	t.Helper()
	img, err := qr.Render(payload, 240)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), img, 0o644))
}
