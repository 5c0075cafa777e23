package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/pairing"
)

var created = time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

func mustTask(t *testing.T, id string, sender, recipient int64) Task {
	t.Helper()
	task, err := NewTask(id, 50000, 100000, 100001, "walk 10 min", created)
	if sender != 100000 {
		task, err = NewTask(id, 50000, 100001, 100000, "walk 10 min", created)
	}
	require.NoError(t, err)
	return task
}

func TestNewTask_Validation(t *testing.T) {
	cases := []struct {
		name      string
		title     string
		sender    int64
		recipient int64
		field     string
	}{
		{"empty title", "   ", 100000, 100001, "title"},
		{"self", "x", 100000, 100000, "recipient"},
		{"foreign sender", "x", 100002, 100001, "sender"},
		{"foreign recipient", "x", 100000, 100003, "recipient"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTask("id", 50000, accountOf(tc.sender), accountOf(tc.recipient), tc.title, created)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestNewTask_TrimsTitle(t *testing.T) {
	task, err := NewTask("id", 50000, 100000, 100001, "  walk  ", created)
	require.NoError(t, err)
	assert.Equal(t, "walk", task.Title)
	assert.NotNil(t, task.Completions)
}

func TestSetCompletion_ToggleRestoresNotDone(t *testing.T) {
	task := mustTask(t, "a", 100000, 100001)
	day := StartOfDay(created)

	task.SetCompletion(day, true)
	task.SetCompletion(day, true)
	assert.True(t, task.IsDone(day))

	task.SetCompletion(day, false)
	assert.False(t, task.IsDone(day))
	assert.False(t, task.IsDone(day.AddDate(0, 0, 1)))
}

func TestCreatedOnOrBefore_UsesDayLocation(t *testing.T) {
	task := mustTask(t, "a", 100000, 100001)
	task.CreatedAt = time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	tokyo := time.FixedZone("JST", 9*3600)
	// 23:30 UTC on the 10th is the 11th in Tokyo.
	assert.False(t, task.CreatedOnOrBefore(time.Date(2026, 3, 10, 0, 0, 0, 0, tokyo)))
	assert.True(t, task.CreatedOnOrBefore(time.Date(2026, 3, 11, 0, 0, 0, 0, tokyo)))
	assert.True(t, task.CreatedOnOrBefore(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestDocument_Filters(t *testing.T) {
	doc := NewDocument()
	doc.Prepend(mustTask(t, "1", 100000, 100001))
	doc.Prepend(mustTask(t, "2", 100001, 100000))
	other, err := NewTask("3", 60000, 120000, 120001, "other", created)
	require.NoError(t, err)
	doc.Prepend(other)

	assert.Equal(t, "3", doc.Tasks[0].ID)
	assert.Len(t, doc.TasksForPair(50000), 2)
	require.Len(t, doc.TasksReceivedBy(100001), 1)
	assert.Equal(t, "1", doc.TasksReceivedBy(100001)[0].ID)
	require.Len(t, doc.TasksSentBy(100001), 1)
	assert.Equal(t, "2", doc.TasksSentBy(100001)[0].ID)
}

func TestDocument_UpsertAndReset(t *testing.T) {
	doc := NewDocument()
	task := mustTask(t, "1", 100000, 100001)
	doc.Upsert(task)
	task.Title = "renamed"
	doc.Upsert(task)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "renamed", doc.Tasks[0].Title)

	doc.Upsert(mustTask(t, "2", 100001, 100000))
	other, err := NewTask("3", 60000, 120000, 120001, "other", created)
	require.NoError(t, err)
	doc.Upsert(other)

	assert.Equal(t, 2, doc.ResetPair(50000))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "3", doc.Tasks[0].ID)
}

func TestDocument_JSONRoundTripKeepsUnknownKeys(t *testing.T) {
	raw := `{
	  "tasks": [{"id":"1","pair_id":50000,"sender":100000,"recipient":100001,"title":"walk",
	             "description":"","start_date":"","target_days":0,
	             "created_at":"2026-03-10T08:30:00Z","completions":{"2026-03-10":true,"2026-03-09":false},
	             "pledge":{"amount":5,"currency":"EUR"}}],
	  "profiles": {"100000": {"mood":"tired","want":"tea"}},
	  "rewards": {"50000": {"days_required":5,"gift":"movie"}},
	  "theme": {"color":"blue"}
	}`
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "tea", doc.Profile(100000).Want)
	r, ok := doc.Reward(50000)
	require.True(t, ok)
	assert.Equal(t, 5, r.DaysRequired)
	require.NotNil(t, doc.Tasks[0].Pledge)

	out, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestDocument_LegacyTaskRecordSurvivesRoundTrip(t *testing.T) {
	raw := `{"tasks":[{"id":"a1b2c3d4","pair_id":50000,"title":"stretch","description":"",
	  "created_by":100000,"created_at":"2026-03-10T09:00:00.123456","start_date":"2026-03-10",
	  "target_days":7,"pledge_enabled":true,"pledge_amount":"5","pledge_currency":"EUR",
	  "pledge_note":"coffee","completions":{"2026-03-10":true}}]}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Len(t, doc.Tasks, 1)
	task := doc.Tasks[0]
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 123456000, time.UTC), task.CreatedAt)
	assert.Equal(t, "2026-03-10", task.StartDate)
	assert.Equal(t, 7, task.TargetDays)
	for _, key := range []string{"created_by", "pledge_enabled", "pledge_amount", "pledge_currency", "pledge_note"} {
		assert.Contains(t, task.Extra, key)
	}

	out, err := json.Marshal(&doc)
	require.NoError(t, err)
	var back struct {
		Tasks []map[string]json.RawMessage `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	require.Len(t, back.Tasks, 1)
	rec := back.Tasks[0]
	assert.JSONEq(t, `100000`, string(rec["created_by"]))
	assert.JSONEq(t, `true`, string(rec["pledge_enabled"]))
	assert.JSONEq(t, `"5"`, string(rec["pledge_amount"]))
	assert.JSONEq(t, `"EUR"`, string(rec["pledge_currency"]))
	assert.JSONEq(t, `"coffee"`, string(rec["pledge_note"]))
	assert.JSONEq(t, `""`, string(rec["description"]))
	assert.JSONEq(t, `"2026-03-10T09:00:00.123456Z"`, string(rec["created_at"]))

	var again Document
	require.NoError(t, json.Unmarshal(out, &again))
	assert.True(t, again.Tasks[0].CreatedAt.Equal(task.CreatedAt))
}

func TestTask_CreatedAtFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{`"2026-03-10T09:00:00Z"`, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{`"2026-03-10T11:00:00+02:00"`, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{`"2026-03-10T09:00:00"`, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{`"2026-03-10 09:00:00.5"`, time.Date(2026, 3, 10, 9, 0, 0, 500000000, time.UTC)},
		{`""`, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var task Task
			require.NoError(t, json.Unmarshal([]byte(`{"id":"1","created_at":`+tc.in+`}`), &task))
			assert.True(t, tc.want.Equal(task.CreatedAt), "got %v", task.CreatedAt)
		})
	}

	var task Task
	assert.Error(t, json.Unmarshal([]byte(`{"id":"1","created_at":"yesterday"}`), &task))
}

func TestTask_ExtraCannotShadowKnownKeys(t *testing.T) {
	task := mustTask(t, "1", 100000, 100001)
	task.Extra = map[string]json.RawMessage{"title": json.RawMessage(`"spoofed"`), "legacy": json.RawMessage(`1`)}
	out, err := json.Marshal(task)
	require.NoError(t, err)

	var back Task
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, task.Title, back.Title)
	assert.Equal(t, map[string]json.RawMessage{"legacy": json.RawMessage(`1`)}, back.Extra)
}

func TestDocument_UnmarshalEmptyObject(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{}`), &doc))
	assert.NotNil(t, doc.Tasks)
	assert.NotNil(t, doc.Profiles)
	assert.NotNil(t, doc.Rewards)

	out, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[],"profiles":{},"rewards":{}}`, string(out))
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := NewDocument()
	doc.Prepend(mustTask(t, "1", 100000, 100001))
	c := doc.Clone()
	c.Tasks[0].SetCompletion(created, true)
	assert.False(t, doc.Tasks[0].IsDone(created))

	doc.Tasks[0].Extra = map[string]json.RawMessage{"created_by": json.RawMessage(`100000`)}
	c = doc.Clone()
	c.Tasks[0].Extra["created_by"][0] = '9'
	assert.Equal(t, "100000", string(doc.Tasks[0].Extra["created_by"]))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-03-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", DayKey(d))

	_, err = ParseDay("10.03.2026", time.UTC)
	assert.True(t, apperr.IsValidation(err))
}

func accountOf(n int64) pairing.Account { return pairing.Account(n) }
