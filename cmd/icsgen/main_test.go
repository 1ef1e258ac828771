package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icsgen/internal/config"
	"icsgen/internal/extract"
	"icsgen/internal/llm"
)

const stubReply = `Title: Lunch with Sam
Description: Catch up
Start Time: 2024-04-01 12:00 America/Chicago
Duration: 1.5
Location: Cafe Rio
All Day: false
Recurrence: FREQ=WEEKLY;BYDAY=MO;COUNT=3
`

func stubDeps(reply string, err error) deps {
	return deps{
		newCompleter: func(*config.Config) llm.Completer {
			return llm.CompleterFunc(func(context.Context, string, string) (string, error) {
				return reply, err
			})
		},
		now: func() time.Time { return time.Date(2024, 3, 30, 15, 0, 0, 0, time.UTC) },
	}
}

func run(t *testing.T, d deps, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvTimezone, "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(d)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lunch.ics")

	stdout, stderr, err := run(t, stubDeps(stubReply, nil), "-o", path, "--preview", "5", "lunch with Sam on Monday")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Successfully created ICS file: "+path)
	assert.NotContains(t, stdout, "occurrence")
	assert.Contains(t, stderr, "Next 3 occurrence(s):")
	assert.Contains(t, stderr, "Mon 2024-04-15 12:00 CDT")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DTSTART;TZID=America/Chicago:20240401T120000")
	assert.Contains(t, string(data), "RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=3")
}

func TestGenerateDryRun(t *testing.T) {
	stdout, stderr, err := run(t, stubDeps(stubReply, nil), "--dry-run", "--preview", "2", "lunch")
	require.NoError(t, err)

	assert.Contains(t, stdout, "BEGIN:VCALENDAR")
	assert.Contains(t, stdout, "SUMMARY:Lunch with Sam")
	assert.NotContains(t, stdout, "Successfully created")
	assert.NotContains(t, stdout, "occurrence")
	assert.Contains(t, stderr, "Next 2 occurrence(s):")
}

func TestGenerateLogLevelFromEnv(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	reply := strings.Replace(stubReply, "America/Chicago", "Mars/Olympus_Mons", 1)

	_, stderr, err := run(t, stubDeps(reply, nil), "--dry-run", "lunch")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[WARN] event degraded")

	t.Setenv(config.EnvLogLevel, "error")
	_, stderr, err = run(t, stubDeps(reply, nil), "--dry-run", "lunch")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "[WARN]")
}

func TestGenerateMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.ics")
	reply := "Title: Lunch\nDescription: x\nStart Time: 2024-04-01 12:00\n"

	_, _, err := run(t, stubDeps(reply, nil), "-o", path, "lunch")

	var extErr *extract.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, []string{"Duration"}, extErr.Missing)
	assert.NoFileExists(t, path)
}

func TestGenerateCompleterError(t *testing.T) {
	_, _, err := run(t, stubDeps("", llm.ErrMissingAPIKey), "-o", filepath.Join(t.TempDir(), "e.ics"), "lunch")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestGenerateRequiresPrompt(t *testing.T) {
	_, _, err := run(t, stubDeps(stubReply, nil))
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lunch.ics")
	_, _, err := run(t, stubDeps(stubReply, nil), "-o", path, "lunch")
	require.NoError(t, err)

	stdout, _, err := run(t, stubDeps("", nil), "inspect", "-n", "2", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Title:       Lunch with Sam")
	assert.Contains(t, stdout, "Start:       2024-04-01 12:00 America/Chicago")
	assert.Contains(t, stdout, "Duration:    PT1H30M")
	assert.Contains(t, stdout, "Location:    Cafe Rio")
	assert.Contains(t, stdout, "Recurrence:  FREQ=WEEKLY;BYDAY=MO;COUNT=3")
	assert.Contains(t, stdout, "Next 2 occurrence(s):")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icsgen.yaml")

	stdout, _, err := run(t, stubDeps("", nil), "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default config to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTimezone, cfg.Timezone)

	_, _, err = run(t, stubDeps("", nil), "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = run(t, stubDeps("", nil), "config", "init", "--force", path)
	require.NoError(t, err)
}
