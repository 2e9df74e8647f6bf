package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/docentes-portal/backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidUser wraps validation failures of CreateUserInput.
var ErrInvalidUser = errors.New("invalid user")

// PasswordHasher produces storable password hashes.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// CreateUserInput is the payload accepted when creating a single record.
type CreateUserInput struct {
	Cedula          string      `json:"cedula" validate:"required_if=Role docente"`
	Nombre          string      `json:"nombre" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Telefono        string      `json:"telefono"`
	Departamento    string      `json:"departamento"`
	TituloAcademico string      `json:"tituloAcademico"`
	Role            models.Role `json:"role" validate:"required,oneof=docente administrador"`
	Username        string      `json:"username" validate:"required_if=Role administrador"`
	Password        string      `json:"password" validate:"required_if=Role administrador"`
}

// Service encapsulates user-related business logic
type Service struct {
	repo     Directory
	hasher   PasswordHasher
	validate *validator.Validate
}

func NewService(r Directory, h PasswordHasher) *Service {
	return &Service{repo: r, hasher: h, validate: validator.New()}
}

// Create validates the input and inserts a new active record. Administrator
// passwords are hashed before they reach the store.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	u := &models.User{
		Cedula:          in.Cedula,
		Nombre:          in.Nombre,
		Email:           in.Email,
		Telefono:        in.Telefono,
		Departamento:    in.Departamento,
		TituloAcademico: in.TituloAcademico,
		Role:            in.Role,
		Username:        in.Username,
		Activo:          models.Active(true),
	}
	if in.Role == models.RoleAdministrator && in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	return s.repo.Insert(ctx, u)
}

func (s *Service) FindAll(ctx context.Context) ([]*models.User, error) {
	return s.repo.FindAll(ctx)
}

// EnsureAdmin creates the administrator described by in unless an active
// record with that username already exists. It reports whether a record was
// created. Input without username or password is a no-op.
func (s *Service) EnsureAdmin(ctx context.Context, in CreateUserInput) (*models.User, bool, error) {
	if in.Username == "" || in.Password == "" {
		return nil, false, nil
	}
	existing, err := s.repo.FindActiveByUsername(ctx, in.Username)
	if err != nil {
		return nil, false, fmt.Errorf("lookup admin %q: %w", in.Username, err)
	}
	if existing != nil {
		return existing, false, nil
	}
	in.Role = models.RoleAdministrator
	u, err := s.Create(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
