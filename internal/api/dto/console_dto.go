package dto

import (
	"time"

	"github.com/sanskruthi/fest-service/internal/checkin"
	"github.com/sanskruthi/fest-service/internal/domain"
)

// OpenConsoleRequest payload for POST /admin/consoles.
type OpenConsoleRequest struct {
	Mode string `json:"mode"`
}

// SwitchModeRequest payload for POST /admin/consoles/:id/mode.
type SwitchModeRequest struct {
	Mode string `json:"mode"`
}

// MessageResponse is the operator-facing message.
type MessageResponse struct {
	Code     string           `json:"code"`
	Text     string           `json:"text"`
	Severity checkin.Severity `json:"severity"`
}

// AttendeeResponse is the resolved attendee.
type AttendeeResponse struct {
	UserID      string     `json:"user_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	College     string     `json:"college"`
	PhotoURL    string     `json:"photo_url"`
	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

// ConsoleResponse is a console session snapshot.
type ConsoleResponse struct {
	ID          string            `json:"id"`
	Mode        checkin.Mode      `json:"mode"`
	State       checkin.State     `json:"state"`
	Scanning    bool              `json:"scanning"`
	CanConfirm  bool              `json:"can_confirm"`
	Attendee    *AttendeeResponse `json:"attendee,omitempty"`
	Message     *MessageResponse  `json:"message,omitempty"`
	CameraError string            `json:"camera_error,omitempty"`
	RosterSize  int               `json:"roster_size"`
	Cycle       uint64            `json:"cycle"`
}

// FrameResponse reports whether a pushed frame reached the scan loop.
type FrameResponse struct {
	Accepted bool `json:"accepted"`
}

// RosterEntryResponse is one checked-in attendee.
type RosterEntryResponse struct {
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	FullName     string    `json:"full_name"`
	College      string    `json:"college"`
	PhotoURL     string    `json:"photo_url"`
	CheckInTime  time.Time `json:"check_in_time"`
}

// FromSnapshot converts a console snapshot.
func FromSnapshot(s checkin.Snapshot) ConsoleResponse {
	resp := ConsoleResponse{
		ID:          s.ConsoleID,
		Mode:        s.Mode,
		State:       s.State,
		Scanning:    s.Scanning,
		CanConfirm:  s.CanConfirm,
		CameraError: s.CameraError,
		RosterSize:  s.RosterSize,
		Cycle:       s.Cycle,
	}
	if a := s.Attendee; a != nil {
		resp.Attendee = &AttendeeResponse{
			UserID:      a.Registration.UserID,
			FullName:    a.Registration.FullName,
			Email:       a.Registration.Email,
			Phone:       a.Registration.Phone,
			College:     a.Registration.College,
			PhotoURL:    a.Registration.PhotoURL,
			CheckedIn:   a.CheckedIn(),
			CheckedInAt: a.CheckedInAt,
		}
	}
	if m := s.Message; m != nil {
		resp.Message = &MessageResponse{Code: m.Code, Text: m.Text, Severity: m.Severity}
	}
	return resp
}

// FromRoster converts roster entries.
func FromRoster(entries []domain.RosterEntry) []RosterEntryResponse {
	out := make([]RosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, RosterEntryResponse{
			AttendanceID: e.AttendanceID,
			UserID:       e.Registration.UserID,
			FullName:     e.Registration.FullName,
			College:      e.Registration.College,
			PhotoURL:     e.Registration.PhotoURL,
			CheckInTime:  e.CheckInTime,
		})
	}
	return out
}

// AttendanceLogEntryResponse is one audit entry.
type AttendanceLogEntryResponse struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	FullName     string                  `json:"full_name"`
	AttendanceID string                  `json:"attendance_id,omitempty"`
	Action       domain.AttendanceAction `json:"action"`
	ActorType    domain.SubjectType      `json:"actor_type"`
	ConsoleID    string                  `json:"console_id,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// FromAttendanceLog converts audit entries.
func FromAttendanceLog(entries []domain.AttendanceLogEntry) []AttendanceLogEntryResponse {
	out := make([]AttendanceLogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AttendanceLogEntryResponse{
			ID:           e.ID,
			UserID:       e.UserID,
			FullName:     e.FullName,
			AttendanceID: e.AttendanceID,
			Action:       e.Action,
			ActorType:    e.ActorType,
			ConsoleID:    e.ConsoleID,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}
