package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ClassHandler struct {
	BaseHandler
	classService services.ClassService
}

func NewClassHandler(classService services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: classService,
	}
}

// ListUpcoming lists scheduled classes, soonest first
// @Router /api/classes [get]
func (h *ClassHandler) ListUpcoming(c *gin.Context) {
	classes, err := h.classService.ListUpcoming(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

// GetClass retrieves a class by ID
// @Router /api/classes/{id} [get]
func (h *ClassHandler) GetClass(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// GetByRoomCode resolves the code students type to join
// @Router /api/classes/room/{roomCode} [get]
func (h *ClassHandler) GetByRoomCode(c *gin.Context) {
	code := ParseStringIDParam(c, "roomCode")
	if code == "" {
		return
	}

	class, err := h.classService.GetByRoomCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// CreateClass schedules a new class owned by the caller
// @Router /api/classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req services.CreateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Class created", "class_id", class.ID)
	c.JSON(http.StatusCreated, class)
}

// UpdateStatus moves the class along its lifecycle
// @Router /api/classes/{id}/status [patch]
func (h *ClassHandler) UpdateStatus(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateClassStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.UpdateStatus(c.Request.Context(), id, &req, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// History lists the class's status changes
// @Router /api/classes/{id}/history [get]
func (h *ClassHandler) History(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	changes, err := h.classService.History(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, changes)
}

// ListMine lists classes the caller lectures, newest first
// @Router /api/lecturer/classes [get]
func (h *ClassHandler) ListMine(c *gin.Context) {
	classes, err := h.classService.ListByLecturer(c.Request.Context(), h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}
