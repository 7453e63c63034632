package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
	"ewm/api/services"
)

type CommentHandlers struct {
	Service *services.CommentService
	log     *zap.Logger
}

func NewCommentHandlers(s *services.CommentService, log *zap.Logger) *CommentHandlers {
	return &CommentHandlers{Service: s, log: log}
}

func (h *CommentHandlers) Create(c *gin.Context) {
	userID, eventID, err := userAndEvent(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.NewCommentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	comment, err := h.Service.Create(c.Request.Context(), userID, eventID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandlers) Update(c *gin.Context) {
	userID, commentID, err := userAndComment(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.NewCommentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	comment, err := h.Service.Update(c.Request.Context(), userID, commentID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandlers) Delete(c *gin.Context) {
	userID, commentID, err := userAndComment(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.Service.Delete(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandlers) EventComments(c *gin.Context) {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := page(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	comments, err := h.Service.EventComments(c.Request.Context(), eventID, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandlers) Get(c *gin.Context) {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	comment, err := h.Service.Get(c.Request.Context(), commentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Moderate handles PATCH /admin/comments/:commentId?confirm=true|false.
func (h *CommentHandlers) Moderate(c *gin.Context) {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	confirm, err := queryBool(c, "confirm")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if confirm == nil {
		respondError(c, h.log, apperr.Validation("Required request parameter 'confirm' is not present"))
		return
	}
	comment, err := h.Service.Moderate(c.Request.Context(), commentID, *confirm)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func userAndComment(c *gin.Context) (int64, int64, error) {
	userID, err := pathID(c, "userId")
	if err != nil {
		return 0, 0, err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return 0, 0, err
	}
	return userID, commentID, nil
}
