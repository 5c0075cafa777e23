package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
)

type taskRow struct {
	ID          string `gorm:"primaryKey"`
	Position    int    `gorm:"index"`
	PairID      int64  `gorm:"index"`
	Sender      int64
	Recipient   int64
	Title       string
	Description string
	Created     time.Time `gorm:"column:created_at"`
	StartDate   string
	TargetDays  int
	Pledge      string // JSON, empty when no pledge
	Extras      string // JSON object of unmodelled record keys, empty when none
}

func (taskRow) TableName() string { return "tasks" }

type completionRow struct {
	TaskID string `gorm:"primaryKey"`
	Day    string `gorm:"primaryKey"`
	Done   bool
}

func (completionRow) TableName() string { return "task_completions" }

type profileRow struct {
	Account string `gorm:"primaryKey"`
	Mood    string
	Want    string
}

func (profileRow) TableName() string { return "profiles" }

type rewardRow struct {
	PairKey      string `gorm:"primaryKey"`
	DaysRequired int
	Gift         string
}

func (rewardRow) TableName() string { return "rewards" }

type extraRow struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (extraRow) TableName() string { return "document_extras" }

// SQLStore keeps the document normalised in SQLite tables.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// DB exposes the handle so other repositories can share the database.
func (s *SQLStore) DB() *gorm.DB { return s.db }

func (s *SQLStore) Load(ctx context.Context) (*model.Document, error) {
	db := s.db.WithContext(ctx)
	doc := model.NewDocument()

	var tasks []taskRow
	if err := db.Order("position ASC").Find(&tasks).Error; err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("list tasks: %w", err)}
	}
	var completions []completionRow
	if err := db.Find(&completions).Error; err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("list completions: %w", err)}
	}
	byTask := make(map[string]map[string]bool, len(tasks))
	for _, c := range completions {
		m, ok := byTask[c.TaskID]
		if !ok {
			m = map[string]bool{}
			byTask[c.TaskID] = m
		}
		m[c.Day] = c.Done
	}

	for _, row := range tasks {
		t := model.Task{
			ID:          row.ID,
			PairID:      pairing.PairID(row.PairID),
			Sender:      pairing.Account(row.Sender),
			Recipient:   pairing.Account(row.Recipient),
			Title:       row.Title,
			Description: row.Description,
			CreatedAt:   row.Created.UTC(),
			StartDate:   row.StartDate,
			TargetDays:  row.TargetDays,
			Completions: byTask[row.ID],
		}
		if t.Completions == nil {
			t.Completions = map[string]bool{}
		}
		if row.Pledge != "" {
			var p model.Pledge
			if err := json.Unmarshal([]byte(row.Pledge), &p); err != nil {
				return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("decode pledge of task %s: %w", row.ID, err)}
			}
			t.Pledge = &p
		}
		if row.Extras != "" {
			if err := json.Unmarshal([]byte(row.Extras), &t.Extra); err != nil {
				return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("decode extras of task %s: %w", row.ID, err)}
			}
		}
		doc.Tasks = append(doc.Tasks, t)
	}

	var profiles []profileRow
	if err := db.Find(&profiles).Error; err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("list profiles: %w", err)}
	}
	for _, p := range profiles {
		doc.Profiles[p.Account] = model.Profile{Mood: p.Mood, Want: p.Want}
	}

	var rewards []rewardRow
	if err := db.Find(&rewards).Error; err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("list rewards: %w", err)}
	}
	for _, r := range rewards {
		doc.Rewards[r.PairKey] = model.RewardConfig{DaysRequired: r.DaysRequired, Gift: r.Gift}
	}

	var extras []extraRow
	if err := db.Find(&extras).Error; err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("list extras: %w", err)}
	}
	for _, e := range extras {
		doc.Extra[e.Key] = json.RawMessage(e.Value)
	}
	return doc, nil
}

// Save replaces every row in one transaction.
func (s *SQLStore) Save(ctx context.Context, doc *model.Document) error {
	tasks := make([]taskRow, 0, len(doc.Tasks))
	var completions []completionRow
	for i, t := range doc.Tasks {
		row := taskRow{
			ID:          t.ID,
			Position:    i,
			PairID:      int64(t.PairID),
			Sender:      int64(t.Sender),
			Recipient:   int64(t.Recipient),
			Title:       t.Title,
			Description: t.Description,
			Created:     t.CreatedAt.UTC(),
			StartDate:   t.StartDate,
			TargetDays:  t.TargetDays,
		}
		if t.Pledge != nil {
			b, err := json.Marshal(t.Pledge)
			if err != nil {
				return &apperr.StorageError{Op: "save", Err: fmt.Errorf("encode pledge of task %s: %w", t.ID, err)}
			}
			row.Pledge = string(b)
		}
		if len(t.Extra) > 0 {
			b, err := json.Marshal(t.Extra)
			if err != nil {
				return &apperr.StorageError{Op: "save", Err: fmt.Errorf("encode extras of task %s: %w", t.ID, err)}
			}
			row.Extras = string(b)
		}
		tasks = append(tasks, row)
		for day, done := range t.Completions {
			completions = append(completions, completionRow{TaskID: t.ID, Day: day, Done: done})
		}
	}
	profiles := make([]profileRow, 0, len(doc.Profiles))
	for account, p := range doc.Profiles {
		profiles = append(profiles, profileRow{Account: account, Mood: p.Mood, Want: p.Want})
	}
	rewards := make([]rewardRow, 0, len(doc.Rewards))
	for key, r := range doc.Rewards {
		rewards = append(rewards, rewardRow{PairKey: key, DaysRequired: r.DaysRequired, Gift: r.Gift})
	}
	extras := make([]extraRow, 0, len(doc.Extra))
	for key, raw := range doc.Extra {
		if !json.Valid(raw) {
			return &apperr.StorageError{Op: "save", Err: fmt.Errorf("extra key %q holds invalid JSON", key)}
		}
		extras = append(extras, extraRow{Key: key, Value: string(raw)})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&completionRow{}, &taskRow{}, &profileRow{}, &rewardRow{}, &extraRow{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		if err := createAll(tx, tasks); err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
		if err := createAll(tx, completions); err != nil {
			return fmt.Errorf("insert completions: %w", err)
		}
		if err := createAll(tx, profiles); err != nil {
			return fmt.Errorf("insert profiles: %w", err)
		}
		if err := createAll(tx, rewards); err != nil {
			return fmt.Errorf("insert rewards: %w", err)
		}
		if err := createAll(tx, extras); err != nil {
			return fmt.Errorf("insert extras: %w", err)
		}
		return nil
	})
	if err != nil {
		return &apperr.StorageError{Op: "save", Err: err}
	}
	return nil
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 200).Error
}
