package model

import (
	"encoding/json"
	"fmt"

	"pair-tasks/internal/pairing"
)

const (
	keyTasks    = "tasks"
	keyProfiles = "profiles"
	keyRewards  = "rewards"
)

// Document is the whole persisted state. Tasks are kept most-recent-first.
// Profiles are keyed by account number, rewards by pair ID, both as text.
// Extra carries top-level keys this version does not know about so that a
// load/save cycle never drops them.
type Document struct {
	Tasks    []Task
	Profiles map[string]Profile
	Rewards  map[string]RewardConfig
	Extra    map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Tasks:    []Task{},
		Profiles: map[string]Profile{},
		Rewards:  map[string]RewardConfig{},
		Extra:    map[string]json.RawMessage{},
	}
}

func (d *Document) normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Profiles == nil {
		d.Profiles = map[string]Profile{}
	}
	if d.Rewards == nil {
		d.Rewards = map[string]RewardConfig{}
	}
	if d.Extra == nil {
		d.Extra = map[string]json.RawMessage{}
	}
	for i := range d.Tasks {
		if d.Tasks[i].Completions == nil {
			d.Tasks[i].Completions = map[string]bool{}
		}
	}
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}
	tasks := d.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	profiles := d.Profiles
	if profiles == nil {
		profiles = map[string]Profile{}
	}
	rewards := d.Rewards
	if rewards == nil {
		rewards = map[string]RewardConfig{}
	}
	out[keyTasks] = tasks
	out[keyProfiles] = profiles
	out[keyRewards] = rewards
	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc := Document{Extra: map[string]json.RawMessage{}}
	for k, v := range raw {
		var err error
		switch k {
		case keyTasks:
			err = json.Unmarshal(v, &doc.Tasks)
		case keyProfiles:
			err = json.Unmarshal(v, &doc.Profiles)
		case keyRewards:
			err = json.Unmarshal(v, &doc.Rewards)
		default:
			doc.Extra[k] = v
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
	}
	doc.normalize()
	*d = doc
	return nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := NewDocument()
	for _, t := range d.Tasks {
		c.Tasks = append(c.Tasks, t.Clone())
	}
	for k, v := range d.Profiles {
		c.Profiles[k] = v
	}
	for k, v := range d.Rewards {
		c.Rewards[k] = v
	}
	for k, v := range d.Extra {
		c.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// TasksForPair returns the pair's tasks in storage order.
func (d *Document) TasksForPair(p pairing.PairID) []Task {
	var out []Task
	for _, t := range d.Tasks {
		if t.PairID == p {
			out = append(out, t)
		}
	}
	return out
}

// TasksReceivedBy returns the tasks of a's pair addressed to a.
func (d *Document) TasksReceivedBy(a pairing.Account) []Task {
	var out []Task
	for _, t := range d.TasksForPair(pairing.PairOf(a)) {
		if t.Recipient == a {
			out = append(out, t)
		}
	}
	return out
}

// TasksSentBy returns the tasks of a's pair sent by a.
func (d *Document) TasksSentBy(a pairing.Account) []Task {
	var out []Task
	for _, t := range d.TasksForPair(pairing.PairOf(a)) {
		if t.Sender == a {
			out = append(out, t)
		}
	}
	return out
}

// FindTask returns the index of the task with id, or -1.
func (d *Document) FindTask(id string) int {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Prepend inserts t at the front so the newest task comes first.
func (d *Document) Prepend(t Task) {
	d.Tasks = append([]Task{t}, d.Tasks...)
}

// Upsert replaces the stored task with t's ID, or appends t if absent.
func (d *Document) Upsert(t Task) {
	if i := d.FindTask(t.ID); i >= 0 {
		d.Tasks[i] = t
		return
	}
	d.Tasks = append(d.Tasks, t)
}

// ResetPair removes every task of pair p and returns how many were removed.
func (d *Document) ResetPair(p pairing.PairID) int {
	kept := d.Tasks[:0]
	removed := 0
	for _, t := range d.Tasks {
		if t.PairID == p {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	d.Tasks = kept
	return removed
}

// Profile returns a's profile; the zero Profile if none was written.
func (d *Document) Profile(a pairing.Account) Profile {
	return d.Profiles[a.String()]
}

// SetProfile overwrites a's profile.
func (d *Document) SetProfile(a pairing.Account, p Profile) {
	if d.Profiles == nil {
		d.Profiles = map[string]Profile{}
	}
	d.Profiles[a.String()] = p
}

// Reward returns the configured reward of pair p, if any.
func (d *Document) Reward(p pairing.PairID) (RewardConfig, bool) {
	r, ok := d.Rewards[p.String()]
	return r, ok
}

// SetReward overwrites the reward of pair p.
func (d *Document) SetReward(p pairing.PairID, r RewardConfig) {
	if d.Rewards == nil {
		d.Rewards = map[string]RewardConfig{}
	}
	d.Rewards[p.String()] = r
}
