package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// EnrollRequest is the body of POST /api/enrollments
type EnrollRequest struct {
	ClassID string `json:"classId"`
}

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// Enroll adds the caller to a class; 201 when new, 200 when already enrolled
// @Router /api/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, created, err := h.enrollmentService.Enroll(c.Request.Context(), req.ClassID, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, enrollment)
}

// ListMine lists the caller's enrollments
// @Router /api/enrollments/student [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	enrollments, err := h.enrollmentService.ListByStudent(c.Request.Context(), h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// ListByClass returns the class roster
// @Router /api/enrollments/class/{classId} [get]
func (h *EnrollmentHandler) ListByClass(c *gin.Context) {
	classID := ParseStringIDParam(c, "classId")
	if classID == "" {
		return
	}

	enrollments, err := h.enrollmentService.ListByClass(c.Request.Context(), classID, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// MarkAttendance flags an enrollment as attended
// @Router /api/enrollments/attendance [post]
func (h *EnrollmentHandler) MarkAttendance(c *gin.Context) {
	var req services.MarkAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.MarkAttendance(c.Request.Context(), &req, h.extractUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// ExportAttendance downloads the roster as xlsx (default) or csv
// @Router /api/enrollments/class/{classId}/export [get]
func (h *EnrollmentHandler) ExportAttendance(c *gin.Context) {
	classID := ParseStringIDParam(c, "classId")
	if classID == "" {
		return
	}

	format := services.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(services.ExportXLSX))))
	export, err := h.enrollmentService.ExportAttendance(c.Request.Context(), classID, h.extractUserID(c), format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
