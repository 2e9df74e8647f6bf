package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docentes-portal/backend/internal/models"
	"github.com/docentes-portal/backend/internal/tokens"
	"github.com/docentes-portal/backend/pkg/logger"
	"github.com/docentes-portal/backend/pkg/metrics"
)

// Failure kinds. Match them with errors.Is; the *Error returned by the
// service carries the message that may be shown to the caller.
var (
	ErrInvalidInput   = errors.New("invalid login input")
	ErrNotFound       = errors.New("user not found")
	ErrWrongRole      = errors.New("wrong role")
	ErrBadCredentials = errors.New("bad credentials")
)

// Public messages. The administrator flow deliberately uses one message for
// unknown usernames and wrong passwords.
const (
	MsgInstructorNotFound  = "Cédula no registrada"
	MsgNotInstructor       = "Este usuario no es un docente"
	MsgAdminBadCredentials = "Usuario o contraseña incorrectos"
	MsgNotAdministrator    = "Este usuario no es un administrador"
	MsgInvalidInput        = "Datos de acceso incompletos"
)

// Error is a login failure with an externally visible message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, msg string) error { return &Error{Kind: kind, Message: msg} }

// Directory is the subset of the user store the login flows read from.
type Directory interface {
	FindByIdentifier(ctx context.Context, cedula string) (*models.User, error)
	FindActiveByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordVerifier compares a plaintext password with a stored hash.
type PasswordVerifier interface {
	Compare(plain, hash string) bool
}

// TokenSigner turns a claim set into a signed session token.
type TokenSigner interface {
	Sign(c tokens.Claims) (string, error)
}

// UserView is the sanitized projection returned with a token. It never
// carries the password hash.
type UserView struct {
	ID           string      `json:"id"`
	Cedula       string      `json:"cedula,omitempty"`
	Username     string      `json:"username,omitempty"`
	Nombre       string      `json:"nombre"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	Departamento string      `json:"departamento,omitempty"`
}

// Result is what a successful login returns.
type Result struct {
	AccessToken string   `json:"access_token"`
	User        UserView `json:"user"`
}

// Service issues session tokens for the two login flows.
type Service struct {
	dir    Directory
	hasher PasswordVerifier
	signer TokenSigner
}

func NewService(dir Directory, hasher PasswordVerifier, signer TokenSigner) *Service {
	return &Service{dir: dir, hasher: hasher, signer: signer}
}

// LoginInstructor authenticates an instructor by cedula alone. The record's
// activo flag is read permissively (see models.ActiveFlag.Truthy).
func (s *Service) LoginInstructor(ctx context.Context, cedula string) (*Result, error) {
	if strings.TrimSpace(cedula) == "" {
		return nil, fail(ErrInvalidInput, MsgInvalidInput)
	}
	u, err := s.dir.FindByIdentifier(ctx, cedula)
	if err != nil {
		return nil, fmt.Errorf("find instructor: %w", err)
	}
	if u == nil || !u.Activo.Truthy() {
		logger.Debugf("login(docente): no active record for cedula=%s", cedula)
		metrics.LoginAttempts.WithLabelValues("docente", "not_found").Inc()
		return nil, fail(ErrNotFound, MsgInstructorNotFound)
	}
	if u.Role != models.RoleInstructor {
		logger.Warnf("login(docente): user %s has role %q", u.ID, u.Role)
		metrics.LoginAttempts.WithLabelValues("docente", "wrong_role").Inc()
		return nil, fail(ErrWrongRole, MsgNotInstructor)
	}

	c := tokens.Claims{Cedula: u.Cedula, Nombre: u.Nombre, Email: u.Email, Role: u.Role}
	c.Subject = u.ID
	tok, err := s.signer.Sign(c)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues("docente", "ok").Inc()
	return &Result{
		AccessToken: tok,
		User: UserView{
			ID:           u.ID,
			Cedula:       u.Cedula,
			Nombre:       u.Nombre,
			Email:        u.Email,
			Role:         u.Role,
			Departamento: u.Departamento,
		},
	}, nil
}

// LoginAdministrator authenticates an administrator by username and
// password. Only records whose activo flag is strictly true are considered.
func (s *Service) LoginAdministrator(ctx context.Context, username, password string) (*Result, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fail(ErrInvalidInput, MsgInvalidInput)
	}
	u, err := s.dir.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find administrator: %w", err)
	}
	if u == nil {
		logger.Debugf("login(admin): no active record for username=%s", username)
		metrics.LoginAttempts.WithLabelValues("admin", "not_found").Inc()
		return nil, fail(ErrNotFound, MsgAdminBadCredentials)
	}
	if u.Role != models.RoleAdministrator {
		logger.Warnf("login(admin): user %s has role %q", u.ID, u.Role)
		metrics.LoginAttempts.WithLabelValues("admin", "wrong_role").Inc()
		return nil, fail(ErrWrongRole, MsgNotAdministrator)
	}
	if !s.hasher.Compare(password, u.PasswordHash) {
		logger.Debugf("login(admin): password mismatch for username=%s", username)
		metrics.LoginAttempts.WithLabelValues("admin", "bad_credentials").Inc()
		return nil, fail(ErrBadCredentials, MsgAdminBadCredentials)
	}

	c := tokens.Claims{Username: u.Username, Nombre: u.Nombre, Email: u.Email, Role: u.Role}
	c.Subject = u.ID
	tok, err := s.signer.Sign(c)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues("admin", "ok").Inc()
	return &Result{
		AccessToken: tok,
		User: UserView{
			ID:       u.ID,
			Username: u.Username,
			Nombre:   u.Nombre,
			Email:    u.Email,
			Role:     u.Role,
		},
	}, nil
}
