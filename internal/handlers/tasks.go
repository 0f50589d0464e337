package handlers

import (
	"task-api/internal/models"
	"task-api/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	taskService services.TaskService
	validate    = validator.New()
)

// SetTaskService sets the task store used by the task handlers
func SetTaskService(ts services.TaskService) {
	taskService = ts
}

// ListTasks - all tasks
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Task
// @Failure 401 {object} map[string]interface{}
// @Router /api/tasks [get]
func ListTasks(c *fiber.Ctx) error {
	traceID := getTraceID(c)

	tasks := taskService.List()

	zapLogger.Info("Tasks listed",
		zap.String("trace_id", traceID),
		zap.Any("user_id", c.Locals("user_id")),
		zap.Int("count", len(tasks)),
	)

	return c.JSON(tasks)
}

// CreateTask - add a task owned by the caller
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task body models.CreateTaskRequest true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/tasks [post]
func CreateTask(c *fiber.Ctx) error {
	traceID := getTraceID(c)

	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "unauthorized",
			"trace_id": traceID,
		})
	}

	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		zapLogger.Warn("Task create body parse error",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Invalid JSON format",
			"trace_id": traceID,
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Validation failed",
			"details":  err.Error(),
			"trace_id": traceID,
		})
	}

	task := taskService.Create(userID, req)
	return c.Status(fiber.StatusCreated).JSON(task)
}
