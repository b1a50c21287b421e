package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/realtime"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	BaseHandler
	chatService  services.ChatService
	classService services.ClassService
	streamer     *realtime.ChatStreamer
	metrics      *metrics.Metrics
}

func NewChatHandler(
	chatService services.ChatService,
	classService services.ClassService,
	streamer *realtime.ChatStreamer,
	m *metrics.Metrics,
	logger utils.Logger,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler:  NewBaseHandler(logger),
		chatService:  chatService,
		classService: classService,
		streamer:     streamer,
		metrics:      m,
	}
}

// ListMessages returns the class feed oldest first.
// ?after=<message id> resumes after the last message seen, ?since=RFC3339 keeps newer messages only,
// ?limit caps the page.
// @Router /api/chat/{classId} [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	classID := ParseStringIDParam(c, "classId")
	if classID == "" {
		return
	}

	query := services.ChatQuery{
		After: c.Query("after"),
		Limit: parseIntQuery(c, "limit", 0),
	}
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "since must be an RFC 3339 timestamp", nil)
			return
		}
		query.Since = &parsed
	}

	messages, err := h.chatService.List(c.Request.Context(), classID, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage posts to a class feed
// @Router /api/chat [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	message, err := h.chatService.Send(c.Request.Context(), &req, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// Stream upgrades to a WebSocket that pushes the class's new messages
// @Router /api/chat/{classId}/ws [get]
func (h *ChatHandler) Stream(c *gin.Context) {
	classID := ParseStringIDParam(c, "classId")
	if classID == "" {
		return
	}

	if _, err := h.classService.GetByID(c.Request.Context(), classID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	closed := h.metrics.StreamOpened()
	defer closed()

	if err := h.streamer.Serve(c.Writer, c.Request, classID); err != nil {
		h.log(c).Debug("Chat stream ended", "class_id", classID, "error", err)
	}
}
