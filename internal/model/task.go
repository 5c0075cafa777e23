package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/pairing"
)

// Pledge is an optional stake attached to a task by its sender.
type Pledge struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note,omitempty"`
}

// Task is one obligation from a sender to the other member of the pair.
// Extra holds record keys this version does not model, such as the flat
// pledge_* and created_by fields of older documents.
type Task struct {
	ID          string
	PairID      pairing.PairID
	Sender      pairing.Account
	Recipient   pairing.Account
	Title       string
	Description string
	CreatedAt   time.Time
	StartDate   string // YYYY-MM-DD
	TargetDays  int
	Pledge      *Pledge
	Completions map[string]bool
	Extra       map[string]json.RawMessage
}

// taskRecord is the JSON shape of a Task.
type taskRecord struct {
	ID          string          `json:"id"`
	PairID      pairing.PairID  `json:"pair_id"`
	Sender      pairing.Account `json:"sender"`
	Recipient   pairing.Account `json:"recipient"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
	StartDate   string          `json:"start_date"`
	TargetDays  int             `json:"target_days"`
	Pledge      *Pledge         `json:"pledge,omitempty"`
	Completions map[string]bool `json:"completions"`
}

var taskKeys = map[string]bool{
	"id": true, "pair_id": true, "sender": true, "recipient": true, "title": true,
	"description": true, "created_at": true, "start_date": true, "target_days": true,
	"pledge": true, "completions": true,
}

// Timestamps without a zone are read as UTC.
var naiveTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseCreatedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("created_at %q is not an ISO 8601 timestamp", raw)
}

func (t Task) MarshalJSON() ([]byte, error) {
	completions := t.Completions
	if completions == nil {
		completions = map[string]bool{}
	}
	b, err := json.Marshal(taskRecord{
		ID:          t.ID,
		PairID:      t.PairID,
		Sender:      t.Sender,
		Recipient:   t.Recipient,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		StartDate:   t.StartDate,
		TargetDays:  t.TargetDays,
		Pledge:      t.Pledge,
		Completions: completions,
	})
	if err != nil || len(t.Extra) == 0 {
		return b, err
	}

	out := make(map[string]json.RawMessage, len(t.Extra)+len(taskKeys))
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range t.Extra {
		if !taskKeys[k] {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var rec taskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created, err := parseCreatedAt(rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("task %q: %w", rec.ID, err)
	}

	out := Task{
		ID:          rec.ID,
		PairID:      rec.PairID,
		Sender:      rec.Sender,
		Recipient:   rec.Recipient,
		Title:       rec.Title,
		Description: rec.Description,
		CreatedAt:   created,
		StartDate:   rec.StartDate,
		TargetDays:  rec.TargetDays,
		Pledge:      rec.Pledge,
		Completions: rec.Completions,
	}
	for k, v := range raw {
		if taskKeys[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = map[string]json.RawMessage{}
		}
		out.Extra[k] = v
	}
	if out.Completions == nil {
		out.Completions = map[string]bool{}
	}
	*t = out
	return nil
}

// NewTask validates the pairing invariants and returns a task with an empty
// completion record.
func NewTask(id string, pair pairing.PairID, sender, recipient pairing.Account, title string, createdAt time.Time) (Task, error) {
	title = strings.TrimSpace(title)
	if id == "" {
		return Task{}, apperr.Invalid("id", "task id is required")
	}
	if title == "" {
		return Task{}, apperr.Invalid("title", "title must not be empty")
	}
	if pairing.PairOf(sender) != pair {
		return Task{}, apperr.Invalid("sender", "account %s is not a member of pair %s", sender, pair)
	}
	if !pairing.SamePair(sender, recipient) {
		return Task{}, apperr.Invalid("recipient", "account %s is not a member of pair %s", recipient, pair)
	}
	if sender == recipient {
		return Task{}, apperr.Invalid("recipient", "tasks are sent to the partner, not to yourself")
	}
	return Task{
		ID:          id,
		PairID:      pair,
		Sender:      sender,
		Recipient:   recipient,
		Title:       title,
		CreatedAt:   createdAt.UTC(),
		Completions: map[string]bool{},
	}, nil
}

// IsDone reports whether the task is checked off for day. Missing entries are false.
func (t Task) IsDone(day time.Time) bool {
	return t.Completions[DayKey(day)]
}

// SetCompletion sets or clears the entry for day.
func (t *Task) SetCompletion(day time.Time, done bool) {
	if t.Completions == nil {
		t.Completions = map[string]bool{}
	}
	t.Completions[DayKey(day)] = done
}

// CreatedOnOrBefore reports whether the task existed on the calendar day of
// day, in day's location.
func (t Task) CreatedOnOrBefore(day time.Time) bool {
	return DayKey(t.CreatedAt.In(day.Location())) <= DayKey(day)
}

// Clone returns a copy that shares no maps or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Completions = make(map[string]bool, len(t.Completions))
	for k, v := range t.Completions {
		c.Completions[k] = v
	}
	if t.Pledge != nil {
		p := *t.Pledge
		c.Pledge = &p
	}
	if t.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}
