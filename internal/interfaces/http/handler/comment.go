package handler

import (
	"github.com/gin-gonic/gin"

	appevent "github.com/t1tandr/uevent/internal/application/event"
)

// CommentHandler serves event comments
type CommentHandler struct {
	BaseHandler
	comments *appevent.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments *appevent.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create godoc
// @Summary      Comment on an event
// @Description  parentId makes the comment a reply to a root comment of the same event
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        request body appevent.CreateCommentRequest true "Comment"
// @Success      201 {object} dto.Response{data=appevent.CommentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appevent.CreateCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comment)
}

// ListByEvent godoc
// @Summary      Event comments
// @Description  Root comments newest first, replies oldest first
// @Tags         comments
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200 {object} dto.Response{data=[]appevent.CommentResponse}
// @Router       /comments/event/{eventId} [get]
func (h *CommentHandler) ListByEvent(c *gin.Context) {
	eventID, ok := h.parseUUIDParam(c, "eventId")
	if !ok {
		return
	}
	comments, err := h.comments.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comments)
}

// Update godoc
// @Summary      Edit comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Comment ID"
// @Param        request body appevent.UpdateCommentRequest true "Content"
// @Success      200 {object} dto.Response{data=appevent.CommentResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appevent.UpdateCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comment)
}

// Delete godoc
// @Summary      Delete comment
// @Description  Allowed to the author and the event's managers
// @Tags         comments
// @Produce      json
// @Param        id path string true "Comment ID"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Comment deleted successfully")
}
