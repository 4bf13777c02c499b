package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/natiapp/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("correo o contraseña incorrectos")
	ErrWeakPassword       = errors.New("la contraseña debe tener al menos 8 caracteres")
	ErrEmailExists        = errors.New("el correo ya está registrado")
	ErrInvalidEmail       = errors.New("correo inválido")
	ErrInvalidDisplayName = errors.New("el nombre debe tener entre 1 y 60 caracteres")
	ErrUserNotFound       = errors.New("usuario no encontrado")
)

// MinPasswordLength is the shortest accepted password, in bytes.
const MinPasswordLength = 8

// MaxDisplayName bounds display names, in characters.
const MaxDisplayName = 60

// UserStorage is the subset of the store the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// PasswordAuthenticator implements Authenticator and Profiles with bcrypt hashes.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

var (
	_ Authenticator = (*PasswordAuthenticator)(nil)
	_ Profiles      = (*PasswordAuthenticator)(nil)
)

// NewPasswordAuthenticator creates a password authenticator over storage.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// WithCost returns a copy hashing with the given bcrypt cost. Tests use bcrypt.MinCost.
func (a *PasswordAuthenticator) WithCost(cost int) *PasswordAuthenticator {
	c := *a
	c.cost = cost
	return &c
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	displayName, err = normalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, displayName, string(hashed))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password.
// Unknown emails and wrong passwords return the same error.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// User returns the account with the given ID.
func (a *PasswordAuthenticator) User(ctx context.Context, id string) (*models.User, error) {
	user, err := a.storage.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetDisplayName trims and stores a new display name.
func (a *PasswordAuthenticator) SetDisplayName(ctx context.Context, id, displayName string) (*models.User, error) {
	displayName, err := normalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	if err := a.storage.UpdateDisplayName(ctx, id, displayName); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update display name: %w", err)
	}

	return a.User(ctx, id)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func normalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxDisplayName {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}
