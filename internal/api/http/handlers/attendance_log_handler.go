package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/api/dto"
	"github.com/sanskruthi/fest-service/internal/repository"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

const maxLogLimit = 500

// AttendanceLogHandler serves the check-in/check-out audit trail.
type AttendanceLogHandler struct {
	log repository.AttendanceLogRepository
}

// NewAttendanceLogHandler constructs handler.
func NewAttendanceLogHandler(log repository.AttendanceLogRepository) *AttendanceLogHandler {
	return &AttendanceLogHandler{log: log}
}

// List handles GET /admin/attendance-log?user_id=&limit=.
func (h *AttendanceLogHandler) List(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLogLimit {
			return apperrors.NewValidationError("limit must be between 1 and 500", nil)
		}
		limit = parsed
	}
	entries, err := h.log.List(c.UserContext(), c.Query("user_id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAttendanceLog(entries), "count": len(entries)})
}
