// Package tasks tracks uploaded documents through background processing.
package tasks

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// ErrTaskNotFound is returned for an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// Store keeps tasks in memory. Nothing is persisted or evicted.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
	now   func() time.Time
}

// NewStore creates an empty task store
func NewStore() *Store {
	return &Store{tasks: make(map[string]*models.Task), now: time.Now}
}

// NewID returns a fresh task id.
func NewID() string {
	return uuid.NewString()
}

// Create registers a queued task for an uploaded file. An empty id gets a new uuid.
func (s *Store) Create(id, filename, path string) models.Task {
	if id == "" {
		id = NewID()
	}
	now := s.now()
	t := &models.Task{
		ID:        id,
		Filename:  filename,
		FilePath:  path,
		Status:    models.TaskQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tasks[id] = t
	s.mu.Unlock()
	return *t
}

// Get returns a copy of the task.
func (s *Store) Get(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return *t, nil
}

// Update applies fn to the task under the write lock and stamps UpdatedAt.
func (s *Store) Update(id string, fn func(*models.Task)) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	fn(t)
	t.UpdatedAt = s.now()
	return *t, nil
}

// List returns every task, newest first.
func (s *Store) List() []models.Task {
	s.mu.RLock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes the task.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}
