package handlers

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/api/dto"
	"github.com/sanskruthi/fest-service/internal/checkin"
	"github.com/sanskruthi/fest-service/internal/qr"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

const maxWait = 30 * time.Second

// ConsolesHandler drives admin check-in consoles.
type ConsolesHandler struct {
	consoles *checkin.Manager
	mutator  *checkin.Mutator
}

// NewConsolesHandler constructs handler.
func NewConsolesHandler(consoles *checkin.Manager, mutator *checkin.Mutator) *ConsolesHandler {
	return &ConsolesHandler{consoles: consoles, mutator: mutator}
}

// Open handles POST /admin/consoles.
func (h *ConsolesHandler) Open(c *fiber.Ctx) error {
	var req dto.OpenConsoleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	mode := checkin.ModeCheckIn
	if req.Mode != "" {
		parsed, err := checkin.ParseMode(req.Mode)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		mode = parsed
	}
	console, err := h.consoles.Open(c.UserContext(), mode)
	if err != nil {
		return consoleError(err, nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromSnapshot(console.Snapshot())})
}

// Get handles GET /admin/consoles/:id. With ?wait=N it long-polls up to N
// seconds for the session to change.
func (h *ConsolesHandler) Get(c *fiber.Ctx) error {
	console, err := h.consoles.Get(c.Params("id"))
	if err != nil {
		return consoleError(err, nil)
	}
	snap, changed := console.Watch()
	if wait := parseWait(c.Query("wait")); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-changed:
			snap = console.Snapshot()
		case <-timer.C:
		case <-c.UserContext().Done():
		}
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}

// Close handles DELETE /admin/consoles/:id.
func (h *ConsolesHandler) Close(c *fiber.Ctx) error {
	if err := h.consoles.Close(c.Params("id")); err != nil {
		return consoleError(err, nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Frame handles POST /admin/consoles/:id/frames. The body is a PNG/JPEG
// image, or raw RGBA pixels with ?width= and ?height=.
func (h *ConsolesHandler) Frame(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.consoles.Get(id); err != nil {
		return consoleError(err, nil)
	}
	frame, err := decodeFrame(c)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	accepted, err := h.consoles.PushFrame(id, frame)
	if err != nil {
		return consoleError(err, nil)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.FrameResponse{Accepted: accepted}})
}

// Confirm handles POST /admin/consoles/:id/confirm.
func (h *ConsolesHandler) Confirm(c *fiber.Ctx) error {
	console, err := h.consoles.Get(c.Params("id"))
	if err != nil {
		return consoleError(err, nil)
	}
	if err := console.Confirm(c.UserContext()); err != nil {
		return consoleError(err, console)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(console.Snapshot())})
}

// Reset handles POST /admin/consoles/:id/reset.
func (h *ConsolesHandler) Reset(c *fiber.Ctx) error {
	console, err := h.consoles.Get(c.Params("id"))
	if err != nil {
		return consoleError(err, nil)
	}
	if err := console.Reset(); err != nil {
		return consoleError(err, console)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(console.Snapshot())})
}

// Retry handles POST /admin/consoles/:id/retry.
func (h *ConsolesHandler) Retry(c *fiber.Ctx) error {
	console, err := h.consoles.Get(c.Params("id"))
	if err != nil {
		return consoleError(err, nil)
	}
	if err := console.Retry(c.UserContext()); err != nil {
		return consoleError(err, console)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(console.Snapshot())})
}

// Mode handles POST /admin/consoles/:id/mode.
func (h *ConsolesHandler) Mode(c *fiber.Ctx) error {
	console, err := h.consoles.Get(c.Params("id"))
	if err != nil {
		return consoleError(err, nil)
	}
	var req dto.SwitchModeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	mode, err := checkin.ParseMode(req.Mode)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if err := console.SwitchMode(c.UserContext(), mode); err != nil {
		return consoleError(err, console)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(console.Snapshot())})
}

// Roster handles GET /admin/roster.
func (h *ConsolesHandler) Roster(c *fiber.Ctx) error {
	entries, err := h.mutator.Roster(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRoster(entries), "count": len(entries)})
}

// consoleError maps console failures to API errors, attaching the session
// so the client can render the operator message.
func consoleError(err error, console *checkin.Console) error {
	var details map[string]any
	if console != nil {
		details = map[string]any{"session": dto.FromSnapshot(console.Snapshot())}
	}
	var storeErr *checkin.StoreError
	switch {
	case errors.Is(err, checkin.ErrConsoleNotFound):
		return apperrors.NewNotFound("console", details)
	case errors.Is(err, checkin.ErrConsoleClosed):
		return apperrors.NewGone("CONSOLE_CLOSED", "console closed", details)
	case errors.Is(err, checkin.ErrBusy):
		return apperrors.NewConflict("CONSOLE_BUSY", "console is busy", details)
	case errors.Is(err, checkin.ErrNoAttendee):
		return apperrors.NewConflict("NO_ATTENDEE", "no attendee resolved", details)
	case errors.Is(err, checkin.ErrAlreadyCheckedIn):
		return apperrors.NewConflict(checkin.CodeAlreadyCheckedIn, "attendee is already checked in", details)
	case errors.Is(err, checkin.ErrNotCheckedIn):
		return apperrors.NewConflict(checkin.CodeNotCheckedIn, "attendee has not checked in", details)
	case errors.Is(err, checkin.ErrIdentityLocked):
		return apperrors.NewConflict(checkin.CodeIdentityLocked, "attendee is being updated by another console", details)
	case errors.Is(err, checkin.ErrCameraUnavailable):
		return apperrors.NewUnavailable(checkin.CodeCameraUnavailable, "camera unavailable", details)
	case errors.As(err, &storeErr):
		return apperrors.NewUnavailable(checkin.CodeStoreWriteFailed, "attendance update failed", details).WithCause(err)
	}
	return err
}

func decodeFrame(c *fiber.Ctx) (image.Image, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, errors.New("frame body required")
	}
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEOctetStream) {
		width, _ := strconv.Atoi(c.Query("width"))
		height, _ := strconv.Atoi(c.Query("height"))
		pix := append([]byte(nil), body...)
		return qr.FrameFromPixels(pix, width, height)
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.New("frame must be a PNG or JPEG image")
	}
	return img, nil
}

func parseWait(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
		return 0
	}
	if secs >= maxWait.Seconds() {
		return maxWait
	}
	return time.Duration(secs * float64(time.Second))
}
