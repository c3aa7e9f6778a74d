package v1

import (
	"net/http"

	"go-courier-booking-backend/config"
	"go-courier-booking-backend/internal/auth"
	"go-courier-booking-backend/internal/delivery/http/middleware"
	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc *auth.Service
	users   domain.UserRepository
	config  *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authSvc *auth.Service, users domain.UserRepository, cfg *config.Config, loginLimiter gin.HandlerFunc) {
	handler := &AuthHandler{
		authSvc: authSvc,
		users:   users,
		config:  cfg,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", loginLimiter, handler.Login)
		publicAuth.POST("/register", loginLimiter, handler.Register)
		publicAuth.POST("/register/retry", loginLimiter, handler.RetryProfile)
		publicAuth.POST("/logout", handler.Logout)
		publicAuth.GET("/check-email", handler.CheckEmail)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
	Role     string `json:"role" binding:"required,oneof=user courier"`
}

type RetryProfileRequest struct {
	SubjectID string `json:"subject_id" binding:"required,uuid"`
	RegisterRequest
}

// Login verifies credentials, establishes the server-side session and
// sets the opaque session cookie. The response includes the resolved
// profile and the dashboard the frontend should navigate to.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	sid, state, err := h.authSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, sid, int(h.config.SessionTTL.Seconds()))

	response.Success(c, http.StatusOK, "Signed in", gin.H{
		"profile":  state.Profile,
		"redirect": state.Role().DashboardPath(),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.authSvc.SignUp(c.Request.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		var authErr *auth.Error
		if auth.KindOf(err) == auth.KindPartialRegistration && asAuthError(err, &authErr) {
			// The subject exists but the profile insert failed. Hand
			// the subject id back so the client can retry phase two.
			response.Error(c, http.StatusConflict, "Registration incomplete", gin.H{
				"kind":       auth.KindPartialRegistration.String(),
				"subject_id": authErr.SubjectID,
			})
			return
		}
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registered", profile)
}

// RetryProfile completes phase two of a registration whose profile
// insert failed. The auth subject must already exist.
func (h *AuthHandler) RetryProfile(c *gin.Context) {
	var req RetryProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.authSvc.RetryProfile(c.Request.Context(), req.SubjectID, auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registration completed", profile)
}

// Logout is deliberately public: an expired or broken session must
// still be clearable. The local session drops first; the remote revoke
// is best effort.
func (h *AuthHandler) Logout(c *gin.Context) {
	sid, _ := c.Cookie(middleware.SessionCookieName)
	h.authSvc.SignOut(c.Request.Context(), sid)

	h.setSessionCookie(c, "", -1)
	response.Success(c, http.StatusOK, "Signed out", nil)
}

func (h *AuthHandler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.Error(apperror.BadRequest("email query parameter is required"))
		return
	}

	taken, err := h.authSvc.EmailTaken(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Email checked", gin.H{"available": !taken})
}

// Me returns the caller's profile. Works for both cookie sessions and
// bearer clients since the identity comes from the auth middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.users.GetByID(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(apperror.Unauthorized("Not signed in"))
		return
	}

	response.Success(c, http.StatusOK, "Authenticated", gin.H{
		"profile":   profile,
		"dashboard": profile.Role.DashboardPath(),
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sid string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, sid, maxAge, "/", "", h.config.CookieSecure, true)
}

func asAuthError(err error, target **auth.Error) bool {
	e, ok := err.(*auth.Error)
	if ok {
		*target = e
	}
	return ok
}
