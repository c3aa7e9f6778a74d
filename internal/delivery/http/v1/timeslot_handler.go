package v1

import (
	"net/http"
	"strconv"

	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type TimeSlotHandler struct {
	slotUC domain.TimeSlotUsecase
}

func NewTimeSlotHandler(protected *gin.RouterGroup, slotUC domain.TimeSlotUsecase) {
	handler := &TimeSlotHandler{slotUC: slotUC}

	slots := protected.Group("/time-slots")
	{
		slots.GET("", handler.ListAvailable)
		slots.GET("/mine", handler.ListMine)
		slots.POST("", handler.Add)
		slots.DELETE("/:id", handler.Remove)
	}
}

type AddTimeSlotRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm"`
}

// ListAvailable returns open slots for the booking screen, optionally
// filtered by ?day=0..6.
func (h *TimeSlotHandler) ListAvailable(c *gin.Context) {
	day := -1
	if raw := c.Query("day"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(apperror.BadRequest("day must be a number between 0 and 6"))
			return
		}
		day = parsed
	}

	slots, err := h.slotUC.ListAvailable(c, day)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Time slots fetched", slots)
}

func (h *TimeSlotHandler) ListMine(c *gin.Context) {
	slots, err := h.slotUC.ListMine(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Time slots fetched", slots)
}

func (h *TimeSlotHandler) Add(c *gin.Context) {
	var req AddTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	slot, err := h.slotUC.Add(c, &domain.TimeSlot{
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Time slot created", slot)
}

func (h *TimeSlotHandler) Remove(c *gin.Context) {
	if err := h.slotUC.Remove(c, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Time slot removed", nil)
}
