package services

import (
	"sync"
	"time"

	"task-api/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService keeps tasks in memory. Contents are lost on restart.
type TaskService interface {
	List() []models.Task
	Create(userID string, req models.CreateTaskRequest) models.Task
}

type taskService struct {
	mu     sync.RWMutex
	tasks  []models.Task
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskService creates a store holding the given tasks
func NewTaskService(logger *zap.Logger, seed ...models.Task) TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	tasks := make([]models.Task, len(seed))
	copy(tasks, seed)

	return &taskService{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// DemoTasks returns the two tasks the service starts with
func DemoTasks() []models.Task {
	now := time.Now().UTC()
	first := "Finish the 12-day challenge"
	second := "Get the cluster running"

	return []models.Task{
		{
			ID:          uuid.New(),
			Title:       "Complete Cloud-Native Gauntlet",
			Description: &first,
			UserID:      uuid.NewString(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Title:       "Deploy to K3s",
			Description: &second,
			Completed:   true,
			UserID:      uuid.NewString(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// List returns a copy of every task in insertion order
func (s *taskService) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks
}

func (s *taskService) Create(userID string, req models.CreateTaskRequest) models.Task {
	now := s.now().UTC()
	task := models.Task{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", userID),
	)
	return task
}
