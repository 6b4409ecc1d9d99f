package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/qr"
	"github.com/sanskruthi/fest-service/internal/repository"
	"github.com/sanskruthi/fest-service/internal/storage"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// RegistrationInput is the attendee-supplied part of a registration.
type RegistrationInput struct {
	FullName       string
	Phone          string
	College        string
	Department     string
	Year           string
	ReferralSource string
	Metadata       map[string]string
}

// PhotoUpload is the registration photo as received.
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

// RegistrationService manages one registration per identity.
type RegistrationService struct {
	registrations repository.RegistrationRepository
	images        storage.ImageHost
	dispatcher    events.Dispatcher
	maxPhotoBytes int64
	logger        *zap.Logger
}

// RegistrationDependencies bundles collaborators for the service.
type RegistrationDependencies struct {
	Registrations repository.RegistrationRepository
	Images        storage.ImageHost
	Dispatcher    events.Dispatcher
	MaxPhotoBytes int64
	Logger        *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		registrations: deps.Registrations,
		images:        deps.Images,
		dispatcher:    deps.Dispatcher,
		maxPhotoBytes: deps.MaxPhotoBytes,
		logger:        logger,
	}
}

// Register validates the input, uploads the photo and stores the registration.
func (s *RegistrationService) Register(ctx context.Context, id domain.Identity, in RegistrationInput, photo *PhotoUpload) (*domain.Registration, error) {
	problems := fieldErrors{}
	problems.require("full_name", in.FullName)
	problems.require("college", in.College)
	phone, ok := normalizePhone(in.Phone)
	if !ok {
		problems["phone"] = "must be 7 to 15 digits"
	}
	contentType, err := s.checkPhoto(photo)
	if err != nil {
		problems["photo"] = err.Error()
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", problems)
	}

	if _, err := s.registrations.GetByUserID(ctx, id.ID); err == nil {
		return nil, apperrors.NewConflict("ALREADY_REGISTERED", "identity is already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	key := fmt.Sprintf("photos/%s-%s.%s", id.ID, uuid.NewString(), photoExtensions[contentType])
	url, err := s.images.Upload(ctx, key, contentType, photo.Body)
	if err != nil {
		return nil, apperrors.NewUnavailable("PHOTO_UPLOAD_FAILED", "photo upload failed", nil).WithCause(err)
	}

	reg := &domain.Registration{
		UserID:         id.ID,
		FullName:       strings.TrimSpace(in.FullName),
		Email:          id.Email,
		Phone:          phone,
		College:        strings.TrimSpace(in.College),
		Department:     strings.TrimSpace(in.Department),
		Year:           strings.TrimSpace(in.Year),
		PhotoURL:       url,
		ReferralSource: strings.TrimSpace(in.ReferralSource),
		Metadata:       in.Metadata,
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		if delErr := s.images.Delete(ctx, url); delErr != nil {
			s.logger.Warn("orphaned registration photo", zap.String("url", url), zap.Error(delErr))
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("ALREADY_REGISTERED", "identity is already registered", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRegistrationCreated,
		UserID:    reg.UserID,
		Actor:     events.Actor{Type: domain.SubjectTypeAttendee, ID: reg.UserID},
		Timestamp: time.Now().UTC(),
		Payload: events.RegistrationCreatedPayload{
			FullName: reg.FullName,
			Email:    reg.Email,
			College:  reg.College,
		},
	})
	return reg, nil
}

// Get returns the registration for an identity.
func (s *RegistrationService) Get(ctx context.Context, userID string) (*domain.Registration, error) {
	reg, err := s.registrations.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
	return reg, nil
}

// List pages through registrations for the admin desk.
func (s *RegistrationService) List(ctx context.Context, limit, offset int) ([]domain.Registration, error) {
	return s.registrations.List(ctx, limit, offset)
}

// Ticket renders the QR ticket for a registered identity.
func (s *RegistrationService) Ticket(ctx context.Context, userID string, size int) ([]byte, error) {
	reg, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return qr.Render(reg.UserID, size)
}

func (s *RegistrationService) checkPhoto(photo *PhotoUpload) (string, error) {
	if photo == nil || photo.Body == nil {
		return "", errors.New("is required")
	}
	if s.maxPhotoBytes > 0 && photo.Size > s.maxPhotoBytes {
		return "", fmt.Errorf("must be at most %d bytes", s.maxPhotoBytes)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(photo.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.New("could not be read")
	}
	if _, err := photo.Body.Seek(0, io.SeekStart); err != nil {
		return "", errors.New("could not be read")
	}
	contentType := http.DetectContentType(head[:n])
	if _, ok := photoExtensions[contentType]; !ok {
		return "", errors.New("must be a JPEG or PNG image")
	}
	return contentType, nil
}

func (s *RegistrationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
