package v1

import (
	"io"
	"net/http"
	"strconv"

	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/apperror"
	"go-courier-booking-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// maxAvatarUpload caps the accepted request body for avatar uploads.
const maxAvatarUpload = 5 << 20 // 5 MiB

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
	avatars   *storage.AvatarStore
}

func NewProfileHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase, avatars *storage.AvatarStore, uploadLimiter gin.HandlerFunc) {
	handler := &ProfileHandler{profileUC: profileUC, avatars: avatars}

	profile := protected.Group("/profile")
	{
		profile.GET("", handler.Get)
		profile.PUT("", handler.Update)
		profile.POST("/avatar", uploadLimiter, handler.UploadAvatar)
	}
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileUC.Get(c, c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile fetched", profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	updated, err := h.profileUC.Update(c, &domain.Profile{
		ID:       c.GetString(string(domain.KeyUserID)),
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", updated)
}

// UploadAvatar accepts a JPEG or PNG, normalizes it server-side and
// stores it under the caller's id, then records the public URL.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	if h.avatars == nil {
		c.Error(apperror.Unavailable("Avatar storage is not configured", nil))
		return
	}

	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		c.Error(apperror.BadRequest("avatar file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarUpload+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	if len(data) > maxAvatarUpload {
		c.Error(apperror.BadRequest("avatar exceeds the 5MB limit"))
		return
	}

	normalized, contentType, err := storage.NormalizeAvatar(data)
	if err != nil {
		c.Error(apperror.BadRequest("avatar must be a JPEG or PNG image"))
		return
	}

	selfID := c.GetString(string(domain.KeyUserID))
	url, err := h.avatars.Put(c.Request.Context(), "avatars/"+selfID+".jpg", normalized, contentType)
	if err != nil {
		c.Error(apperror.Unavailable("Could not store avatar", err))
		return
	}

	if err := h.profileUC.SetProfileImage(c, selfID, url); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Avatar updated", gin.H{"profile_image": url})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}
