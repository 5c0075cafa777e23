package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type result struct {
	stdout string
	stderr string
	err    error
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "TELEGRAM_TOKEN", "STORE_DRIVER", "DATA_PATH", "DATABASE_URL",
		"STREAK_POLICY", "REWARD_DEFAULT_DAYS", "REPORT_TIME", "REPORT_INTERVAL_HOURS",
		"ACCOUNT_MIN", "ACCOUNT_MAX", "LOG_LEVEL", "METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("TIMEZONE", "UTC")
}

func run(t *testing.T, path string, args ...string) result {
	t.Helper()
	opts := &RootOptions{now: func() time.Time { return fixedNow }}
	cmd := newRootCommand(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--store", "json", "--path", path}, args...))
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func decode[T any](t *testing.T, r result) T {
	t.Helper()
	require.NoError(t, r.err, r.stderr)
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &resp), r.stdout)
	require.Equal(t, "ok", resp.Status)
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{
		{"pair", "generate"}, {"pair", "show"},
		{"task", "send"}, {"task", "list"}, {"task", "done"}, {"task", "reset"},
		{"streak"}, {"reward", "set"}, {"reward", "show"},
		{"profile", "set"}, {"profile", "show"}, {"export"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "%v", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"store", "path", "db", "policy", "format", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	isolateEnv(t)
	r := run(t, filepath.Join(t.TempDir(), "d.json"), "--format", "xml", "pair", "show", "100000")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}

func TestPairShow(t *testing.T) {
	isolateEnv(t)
	info := decode[PairInfo](t, run(t, filepath.Join(t.TempDir(), "d.json"), "--format", "json", "pair", "show", "100001"))
	assert.EqualValues(t, 100001, info.Account)
	assert.EqualValues(t, 100000, info.Partner)
	assert.EqualValues(t, 50000, info.PairID)
}

func TestPairShowRejectsNonDigits(t *testing.T) {
	isolateEnv(t)
	r := run(t, filepath.Join(t.TempDir(), "d.json"), "pair", "show", "12ab")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}

func TestPairGenerate(t *testing.T) {
	isolateEnv(t)
	info := decode[PairInfo](t, run(t, filepath.Join(t.TempDir(), "d.json"), "--format", "json", "pair", "generate"))
	assert.EqualValues(t, 0, info.Account%2)
	assert.EqualValues(t, info.Account+1, info.Partner)
	assert.GreaterOrEqual(t, int64(info.Account), int64(100000))
	assert.Less(t, int64(info.Account), int64(999998))
}

func TestTaskLifecycle(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")

	created := decode[TaskView](t, run(t, path, "--format", "json", "task", "send", "100000",
		"--title", "stretch", "--target", "3", "--pledge-amount", "5", "--pledge-currency", "EUR"))
	assert.EqualValues(t, 100001, created.Recipient)
	require.NotNil(t, created.Pledge)
	assert.Equal(t, "EUR", created.Pledge.Currency)

	list := decode[[]TaskView](t, run(t, path, "--format", "json", "task", "list", "100001"))
	require.Len(t, list, 1)
	assert.False(t, list[0].DoneToday)

	r := run(t, path, "task", "done", "100000", created.ID)
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stderr, "only the recipient")

	r = run(t, path, "task", "done", "100001", created.ID)
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "done on 2026-03-10")

	list = decode[[]TaskView](t, run(t, path, "--format", "json", "task", "list", "100000", "--sent"))
	require.Len(t, list, 1)
	assert.True(t, list[0].DoneToday)

	r = run(t, path, "task", "done", "100001", created.ID, "--day", "2026-03-09")
	require.NoError(t, r.err, r.stderr)

	r = run(t, path, "streak", "100000", "--task", created.ID)
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "2 day streak, 2 of 3")

	r = run(t, path, "streak", "100002", "--task", created.ID)
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stderr, "does not belong to pair 50001")
}

func TestTaskSendRequiresTitle(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")
	r := run(t, path, "task", "send", "100000")
	require.Error(t, r.err)

	r = run(t, path, "task", "send", "100000", "--title", "   ")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTaskDoneUnknownID(t *testing.T) {
	isolateEnv(t)
	r := run(t, filepath.Join(t.TempDir(), "d.json"), "task", "done", "100001", "missing")
	require.Error(t, r.err)
	assert.Contains(t, r.stderr, "task not found")
}

func TestTaskReset(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, run(t, path, "task", "send", "100000", "--title", "a").err)
	require.NoError(t, run(t, path, "task", "send", "100001", "--title", "b").err)
	require.NoError(t, run(t, path, "task", "send", "100002", "--title", "other pair").err)

	r := run(t, path, "task", "reset", "100001")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))

	r = run(t, path, "task", "reset", "100001", "--yes")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "removed 2 tasks of pair 50000")

	list := decode[[]TaskView](t, run(t, path, "--format", "json", "task", "list", "100002", "--pair"))
	assert.Len(t, list, 1)
}

func TestRewardAndStreak(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")

	r := run(t, path, "reward", "show", "100000")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "after 3 days (default)")

	r = run(t, path, "reward", "set", "100000", "--days", "0")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))

	require.NoError(t, run(t, path, "reward", "set", "100001", "--days", "2", "--gift", "movie night").err)

	require.NoError(t, run(t, path, "task", "send", "100000", "--title", "walk").err)
	list := decode[[]TaskView](t, run(t, path, "--format", "json", "task", "list", "100001"))
	require.Len(t, list, 1)
	require.NoError(t, run(t, path, "task", "done", "100001", list[0].ID).err)

	type progress struct {
		Streak int `json:"streak"`
		Status struct {
			Unlocked  bool `json:"unlocked"`
			Remaining int  `json:"remaining"`
		} `json:"status"`
		Reward struct {
			Gift string `json:"gift"`
		} `json:"reward"`
	}
	p := decode[progress](t, run(t, path, "--format", "json", "streak", "100000"))
	assert.Equal(t, 1, p.Streak)
	assert.False(t, p.Status.Unlocked)
	assert.Equal(t, 1, p.Status.Remaining)
	assert.Equal(t, "movie night", p.Reward.Gift)

	r = run(t, path, "--policy", "strict", "streak", "100000")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "streak: 0 (strict)")
}

func TestProfile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, run(t, path, "profile", "set", "100000", "--mood", "calm").err)
	require.NoError(t, run(t, path, "profile", "set", "100000", "--want", "pizza").err)

	r := run(t, path, "profile", "show", "100000")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, `mood="calm" want="pizza"`)
}

func TestExportKeepsUnknownKeys(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[],"legacy":{"x":1}}`), 0o644))
	require.NoError(t, run(t, path, "task", "send", "100000", "--title", "hug").err)

	r := run(t, path, "export")
	require.NoError(t, r.err, r.stderr)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &doc))
	assert.Contains(t, doc, "legacy")
	assert.Contains(t, doc, "tasks")
	assert.Contains(t, r.stdout, "hug")
}

func TestCorruptStore(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r := run(t, path, "task", "list", "100000")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "no tasks")

	r = run(t, path, "export")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))

	r = run(t, path, "task", "send", "100000", "--title", "x")
	require.Error(t, r.err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}
