package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type RecordingHandler struct {
	BaseHandler
	recordingService services.RecordingService
}

func NewRecordingHandler(recordingService services.RecordingService, logger utils.Logger) *RecordingHandler {
	return &RecordingHandler{
		BaseHandler:      NewBaseHandler(logger),
		recordingService: recordingService,
	}
}

// ListRecordings searches the catalog by title with ?q=, paged by ?limit and ?offset
// @Router /api/recordings [get]
func (h *RecordingHandler) ListRecordings(c *gin.Context) {
	recordings, err := h.recordingService.ListAll(c.Request.Context(), services.RecordingSearch{
		Query:  c.Query("q"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordings)
}

// ListByClass lists one class's recordings
// @Router /api/recordings/class/{classId} [get]
func (h *RecordingHandler) ListByClass(c *gin.Context) {
	classID := ParseStringIDParam(c, "classId")
	if classID == "" {
		return
	}

	recordings, err := h.recordingService.ListByClass(c.Request.Context(), classID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordings)
}

// CreateRecording catalogs a recording for a class the caller manages
// @Router /api/recordings [post]
func (h *RecordingHandler) CreateRecording(c *gin.Context) {
	var req services.CreateRecordingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recording, err := h.recordingService.Create(c.Request.Context(), &req, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recording)
}
