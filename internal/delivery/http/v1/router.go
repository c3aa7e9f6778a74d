package v1

import (
	"net/http"
	"time"

	"go-courier-booking-backend/config"
	"go-courier-booking-backend/internal/auth"
	"go-courier-booking-backend/internal/delivery/http/middleware"
	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// HH:mm wall-clock fields on time slot payloads.
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
	}
}

type RouterDeps struct {
	AuthSvc    *auth.Service
	Guard      *auth.Guard
	Verifier   *auth.TokenVerifier
	UserRepo   domain.UserRepository
	ProfileUC  domain.ProfileUsecase
	TimeSlotUC domain.TimeSlotUsecase
	BookingUC  domain.BookingUsecase
	TaskUC     domain.TaskUsecase
	AdminUC    domain.AdminUsecase
	Avatars    *storage.AvatarStore
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// CORS must run before anything that can abort.
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limit:     deps.Config.RateLimitGlobalThreshold,
		Window:    time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second,
		KeyPrefix: "rl:ip:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}))

	loginLimiter := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limit:      deps.Config.RateLimitLoginThreshold,
		Window:     time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second,
		KeyPrefix:  "rl:login:",
		FailClosed: true,
		KeyFunc:    func(c *gin.Context) string { return c.ClientIP() },
	})
	uploadLimiter := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig())

	// Browser navigation paths carry the redirect rules; API routes
	// below return status codes instead.
	pages := r.Group("")
	pages.Use(middleware.RouteGuard(deps.AuthSvc, deps.Guard))
	{
		pages.GET("/", pageState)
		pages.GET("/login", pageState)
		pages.GET("/register", pageState)
		pages.GET("/dashboard/*role", pageState)
	}

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthSvc, deps.Verifier, deps.UserRepo))
	{
		NewAuthHandler(v1, protected, deps.AuthSvc, deps.UserRepo, deps.Config, loginLimiter)
		NewProfileHandler(protected, deps.ProfileUC, deps.Avatars, uploadLimiter)
		NewTimeSlotHandler(protected, deps.TimeSlotUC)
		NewBookingHandler(protected, deps.BookingUC)
		NewTaskHandler(protected, deps.TaskUC)
		NewAdminHandler(protected, deps.AdminUC, deps.AuthSvc)
	}

	return r
}

// pageState answers guarded navigation requests the frontend shell
// makes before rendering. Redirects never reach here; the guard
// middleware already issued them.
func pageState(c *gin.Context) {
	state, _ := c.MustGet("AuthState").(auth.State)

	body := gin.H{
		"path":  c.Request.URL.Path,
		"phase": state.Phase.String(),
	}
	if state.Authenticated() {
		body["profile"] = state.Profile
		body["dashboard"] = state.Role().DashboardPath()
	}
	response.Success(c, http.StatusOK, "Navigation allowed", body)
}
