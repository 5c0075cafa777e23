package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/metrics"
	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
)

// TaskService wraps task-related business logic.
type TaskService struct {
	docs   *Documents
	clock  Clock
	logger *slog.Logger
	newID  func() string
}

func NewTaskService(docs *Documents, clock Clock, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{docs: docs, clock: clock, logger: logger, newID: newTaskID}
}

func newTaskID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateTask validates input, stamps ID and creation time and stores the task
// in front of the existing ones.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	task, err := model.NewTask(s.newID(), input.PairID, input.Sender, input.Recipient, input.Title, s.clock.now())
	if err != nil {
		return nil, err
	}
	task.Description = input.Description
	task.StartDate = input.StartDate
	task.TargetDays = input.TargetDays
	if input.Pledge != nil {
		p := *input.Pledge
		task.Pledge = &p
	}

	if err := s.docs.Update(ctx, func(doc *model.Document) error {
		doc.Prepend(task)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.TasksCreated.Inc()
	s.logger.Info("task created", "task", task.ID, "pair", task.PairID, "sender", task.Sender, "recipient", task.Recipient)
	return &task, nil
}

// SendToPartner creates a task from sender to the other member of its pair.
func (s *TaskService) SendToPartner(ctx context.Context, sender pairing.Account, title string) (*model.Task, error) {
	return s.CreateTask(ctx, TaskInput{
		PairID:    pairing.PairOf(sender),
		Sender:    sender,
		Recipient: pairing.Partner(sender),
		Title:     title,
	})
}

func (s *TaskService) TasksForPair(ctx context.Context, pair pairing.PairID) []model.Task {
	return s.docs.Read(ctx).TasksForPair(pair)
}

func (s *TaskService) TasksReceivedBy(ctx context.Context, account pairing.Account) []model.Task {
	return s.docs.Read(ctx).TasksReceivedBy(account)
}

func (s *TaskService) TasksSentBy(ctx context.Context, account pairing.Account) []model.Task {
	return s.docs.Read(ctx).TasksSentBy(account)
}

// GetTask returns the task with id or apperr.ErrTaskNotFound.
func (s *TaskService) GetTask(ctx context.Context, id string) (model.Task, error) {
	doc := s.docs.Read(ctx)
	i := doc.FindTask(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %q: %w", id, apperr.ErrTaskNotFound)
	}
	return doc.Tasks[i], nil
}

// SetCompletion sets or clears the day's entry of a task. Only the recipient
// may check off its own tasks. Any day is accepted, past or future.
func (s *TaskService) SetCompletion(ctx context.Context, actor pairing.Account, id string, day time.Time, done bool) (model.Task, error) {
	var updated model.Task
	err := s.docs.Update(ctx, func(doc *model.Document) error {
		i := doc.FindTask(id)
		if i < 0 {
			return fmt.Errorf("task %q: %w", id, apperr.ErrTaskNotFound)
		}
		if doc.Tasks[i].Recipient != actor {
			return apperr.Invalid("account", "only the recipient %s can check off this task", doc.Tasks[i].Recipient)
		}
		doc.Tasks[i].SetCompletion(day, done)
		updated = doc.Tasks[i].Clone()
		return nil
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("set completion: %w", err)
	}

	metrics.CompletionToggles.WithLabelValues(metrics.ToggleState(done)).Inc()
	s.logger.Info("completion set", "task", id, "account", actor, "day", model.DayKey(day), "done", done)
	return updated, nil
}

// ToggleToday flips today's entry of a task received by actor.
func (s *TaskService) ToggleToday(ctx context.Context, actor pairing.Account, id string) (model.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	today := s.clock.Today()
	return s.SetCompletion(ctx, actor, id, today, !task.IsDone(today))
}

// Persist stores task, replacing the record with the same ID or appending it.
func (s *TaskService) Persist(ctx context.Context, task model.Task) error {
	if _, err := model.NewTask(task.ID, task.PairID, task.Sender, task.Recipient, task.Title, task.CreatedAt); err != nil {
		return err
	}
	if err := s.docs.Update(ctx, func(doc *model.Document) error {
		doc.Upsert(task.Clone())
		return nil
	}); err != nil {
		return fmt.Errorf("persist task: %w", err)
	}
	return nil
}

// ResetPair deletes every task of a pair and returns how many were removed.
func (s *TaskService) ResetPair(ctx context.Context, pair pairing.PairID) (int, error) {
	removed := 0
	if err := s.docs.Update(ctx, func(doc *model.Document) error {
		removed = doc.ResetPair(pair)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("reset pair: %w", err)
	}
	s.logger.Info("pair reset", "pair", pair, "removed", removed)
	return removed, nil
}
