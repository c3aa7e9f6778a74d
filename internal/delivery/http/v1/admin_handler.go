package v1

import (
	"net/http"

	"go-courier-booking-backend/internal/auth"
	"go-courier-booking-backend/internal/delivery/http/middleware"
	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
	authSvc *auth.Service
}

func NewAdminHandler(protected *gin.RouterGroup, adminUC domain.AdminUsecase, authSvc *auth.Service) {
	handler := &AdminHandler{adminUC: adminUC, authSvc: authSvc}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/stats", handler.GetStats)
		admin.GET("/users", handler.ListUsers)
		admin.DELETE("/users/:id", handler.DeleteUser)
		admin.DELETE("/delete-self", handler.DeleteSelf)
	}
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminUC.GetStats(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Statistics fetched", stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 10)

	result, err := h.adminUC.ListUsers(c, c.Query("role"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Users fetched", result)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	targetID := c.Param("id")
	if targetID == c.GetString(string(domain.KeyUserID)) {
		c.Error(apperror.BadRequest("Use delete-self to remove your own account"))
		return
	}

	if err := h.adminUC.DeleteUser(c, targetID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User deleted", nil)
}

// DeleteSelf removes the caller's own account: profile row, auth
// subject, then the session. The session drop comes last so a failed
// subject delete leaves the caller signed in and able to retry.
func (h *AdminHandler) DeleteSelf(c *gin.Context) {
	selfID := c.GetString(string(domain.KeyUserID))

	if err := h.adminUC.DeleteUser(c, selfID); err != nil {
		c.Error(err)
		return
	}

	sid, _ := c.Cookie(middleware.SessionCookieName)
	h.authSvc.SignOut(c.Request.Context(), sid)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)

	response.Success(c, http.StatusOK, "Account deleted", nil)
}
