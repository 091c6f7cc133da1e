package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/t1tandr/uevent/internal/application/identity"
)

// UserHandler serves profiles
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
	avatars     uploadPolicy
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService, maxUploadSize int64) *UserHandler {
	return &UserHandler{
		userService: userService,
		avatars:     newUploadPolicy(maxUploadSize, avatarTypes),
	}
}

// GetProfile godoc
// @Summary      Own profile
// @Description  The caller with organized events, tickets, companies and subscriptions
// @Tags         users
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// GetPublicProfile godoc
// @Summary      Public profile
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.PublicProfileResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /user/{id} [get]
func (h *UserHandler) GetPublicProfile(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.GetPublicProfile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Changes"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /user/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req identity.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateAvatar godoc
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "PNG or JPEG, up to 5MB"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /user/update-avatar [post]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	file, err := h.avatars.single(c, "file")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if file == nil {
		h.HandleError(c, ErrFileRequired)
		return
	}

	user, err := h.userService.UpdateAvatar(c.Request.Context(), userID, *file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
