package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/quadboard/internal/kv"
	"github.com/google/uuid"
)

const tasksKey = "board.tasks"

var (
	// ErrTaskNotFound is returned when no task has the requested ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTask is returned for tasks that fail validation.
	ErrInvalidTask = errors.New("invalid task")
)

// Task is a single item on the board.
type Task struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Urgent    bool      `json:"urgent" yaml:"urgent"`
	Important bool      `json:"important" yaml:"important"`
	Done      bool      `json:"done" yaml:"done"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Quadrant returns the task's cell in the matrix.
func (t Task) Quadrant() Quadrant {
	return Classify(t.Urgent, t.Important)
}

// Draft holds the caller-supplied fields of a new task.
type Draft struct {
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	Urgent    bool   `json:"urgent"`
	Important bool   `json:"important"`
}

// Patch updates only the fields that are set.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Urgent    *bool   `json:"urgent,omitempty"`
	Important *bool   `json:"important,omitempty"`
	Done      *bool   `json:"done,omitempty"`
}

// Service manages the task list persisted in a kv.Store.
type Service struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time
}

func NewService(store kv.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns all tasks ordered by creation time.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add validates and stores a new task.
func (s *Service) Add(ctx context.Context, d Draft) (Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return Task{}, err
	}
	now := s.now().UTC()
	task := Task{
		ID:        uuid.New().String(),
		Title:     title,
		Notes:     strings.TrimSpace(d.Notes),
		Urgent:    d.Urgent,
		Important: d.Important,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tasks = append(tasks, task)
	if err := s.save(ctx, tasks); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Update applies p to the task with the given ID.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Task, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Task{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidTask)
	}
	return s.modify(ctx, id, func(t *Task) {
		if p.Title != nil {
			t.Title = strings.TrimSpace(*p.Title)
		}
		if p.Notes != nil {
			t.Notes = strings.TrimSpace(*p.Notes)
		}
		if p.Urgent != nil {
			t.Urgent = *p.Urgent
		}
		if p.Important != nil {
			t.Important = *p.Important
		}
		if p.Done != nil {
			t.Done = *p.Done
		}
	})
}

// Toggle flips the task's done flag.
func (s *Service) Toggle(ctx context.Context, id string) (Task, error) {
	return s.modify(ctx, id, func(t *Task) { t.Done = !t.Done })
}

// Delete removes the task with the given ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return s.save(ctx, tasks)
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// ClearCompleted removes every done task and reports how many were removed.
func (s *Service) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	removed := len(tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx, kept)
}

// Matrix groups tasks by quadrant.
func (s *Service) Matrix(ctx context.Context) (Matrix, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return Matrix{}, err
	}
	return BuildMatrix(tasks), nil
}

func (s *Service) modify(ctx context.Context, id string, fn func(*Task)) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			fn(&tasks[i])
			tasks[i].UpdatedAt = s.now().UTC()
			if err := s.save(ctx, tasks); err != nil {
				return Task{}, err
			}
			return tasks[i], nil
		}
	}
	return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

func (s *Service) load(ctx context.Context) ([]Task, error) {
	raw, ok, err := s.store.Get(ctx, tasksKey)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	tasks := []Task{}
	if !ok || raw == "" {
		return tasks, nil
	}
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Service) save(ctx context.Context, tasks []Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.store.Set(ctx, tasksKey, string(data)); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
