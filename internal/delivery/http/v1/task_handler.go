package v1

import (
	"net/http"
	"time"

	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskUC domain.TaskUsecase
}

func NewTaskHandler(protected *gin.RouterGroup, taskUC domain.TaskUsecase) {
	handler := &TaskHandler{taskUC: taskUC}

	tasks := protected.Group("/tasks")
	{
		tasks.POST("", handler.Assign)
		tasks.GET("/mine", handler.ListMine)
		tasks.PATCH("/:id/status", handler.UpdateStatus)
		tasks.DELETE("/:id", handler.Remove)
	}
}

type AssignTaskRequest struct {
	CourierID   string   `json:"courier_id" binding:"required,uuid"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"` // RFC3339, optional
	Priority    string   `json:"priority" binding:"omitempty,oneof=low medium high"`
	Tags        []string `json:"tags"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress completed"`
}

func (h *TaskHandler) Assign(c *gin.Context) {
	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	task := &domain.Task{
		CourierID:   req.CourierID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Tags:        req.Tags,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			c.Error(apperror.BadRequest("due_date must be RFC3339"))
			return
		}
		task.DueDate = &due
	}

	created, err := h.taskUC.Assign(c, task)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Task assigned", created)
}

func (h *TaskHandler) ListMine(c *gin.Context) {
	tasks, err := h.taskUC.ListMine(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Tasks fetched", tasks)
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.taskUC.UpdateStatus(c, c.Param("id"), domain.TaskStatus(req.Status)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Task updated", nil)
}

func (h *TaskHandler) Remove(c *gin.Context) {
	if err := h.taskUC.Remove(c, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Task removed", nil)
}
