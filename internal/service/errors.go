package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/natiapp/internal/auth"
	"github.com/mmynk/natiapp/internal/events"
	"github.com/mmynk/natiapp/internal/export"
	"github.com/mmynk/natiapp/internal/middleware"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/proof"
	"github.com/mmynk/natiapp/internal/storage"
)

var (
	// errNoAccess hides whether a natillera exists from non-members.
	errNoAccess = errors.New("natillera no encontrada")
	errNotAdmin = errors.New("solo el administrador puede realizar esta acción")
	errInternal = errors.New("error interno, intenta de nuevo")
)

// toConnectError classifies err into a Connect error code. Backend failures
// are logged here and reach the client with a generic message.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var exportErr *export.Error
	switch {
	case models.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, errNoAccess), errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrInvalidCode):
		return connect.NewError(connect.CodeNotFound, models.ErrInvalidCode)
	case errors.Is(err, errNotAdmin):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, models.ErrAlreadyMember), errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidDisplayName),
		errors.Is(err, proof.ErrTooLarge), errors.Is(err, proof.ErrUnsupported):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, auth.ErrUserNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, proof.ErrDisabled):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &exportErr):
		slog.Error(op+" failed", "format", exportErr.Format, "error", err)
		return connect.NewError(connect.CodeInternal, errors.New(exportErr.Format.Message()))
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

// callerID returns the authenticated user, set by the auth interceptor.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// requireMember returns the caller's membership, or errNoAccess.
func requireMember(ctx context.Context, store storage.Store, natilleraID, userID string) (*models.Membership, error) {
	if natilleraID == "" {
		return nil, &models.ValidationError{Field: "natillera_id", Message: "la natillera es requerida"}
	}
	m, err := store.GetMembership(ctx, natilleraID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errNoAccess
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// requireAdmin returns the caller's membership if it carries the admin role.
func requireAdmin(ctx context.Context, store storage.Store, natilleraID, userID string) (*models.Membership, error) {
	m, err := requireMember(ctx, store, natilleraID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin() {
		return nil, errNotAdmin
	}
	return m, nil
}

// publish announces e. The change is already stored, so a broker failure
// is only logged.
func publish(ctx context.Context, publisher events.Publisher, e events.Event) {
	if err := publisher.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event", "kind", e.Kind, "natillera_id", e.NatilleraID, "error", err)
	}
}
