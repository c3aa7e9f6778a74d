package v1

import (
	"net/http"

	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingUC domain.BookingUsecase
}

func NewBookingHandler(protected *gin.RouterGroup, bookingUC domain.BookingUsecase) {
	handler := &BookingHandler{bookingUC: bookingUC}

	bookings := protected.Group("/bookings")
	{
		bookings.POST("", handler.Book)
		bookings.GET("", handler.ListMine)
		bookings.DELETE("/:id", handler.Cancel)
	}
}

type BookRequest struct {
	TimeSlotID string `json:"time_slot_id" binding:"required,uuid"`
}

func (h *BookingHandler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	booking, err := h.bookingUC.Book(c, req.TimeSlotID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Booking created", booking)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	bookings, err := h.bookingUC.ListMine(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Bookings fetched", bookings)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.bookingUC.Cancel(c, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Booking cancelled", nil)
}
