package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/docentes-portal/backend/internal/models"
	"github.com/docentes-portal/backend/internal/security"
	"github.com/docentes-portal/backend/internal/tokens"
	"github.com/docentes-portal/backend/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "auth-test-secret-32-bytes-xxxxxxxxx"

type fixture struct {
	svc    *Service
	repo   *users.MemoryRepository
	issuer *tokens.Issuer
	hasher *security.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := users.NewMemoryRepository()
	hasher := security.NewHasher(bcrypt.MinCost)
	issuer := tokens.NewIssuer(testSecret, time.Hour)
	return &fixture{svc: NewService(repo, hasher, issuer), repo: repo, issuer: issuer, hasher: hasher}
}

func (f *fixture) insert(t *testing.T, u *models.User) *models.User {
	t.Helper()
	out, err := f.repo.Insert(context.Background(), u)
	require.NoError(t, err)
	return out
}

func (f *fixture) admin(t *testing.T, username, password string, activo models.ActiveFlag) *models.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return f.insert(t, &models.User{
		Username: username, PasswordHash: hash, Nombre: "Admin", Email: "admin@x.com",
		Role: models.RoleAdministrator, Activo: activo,
	})
}

func TestLoginInstructor_Success(t *testing.T) {
	f := newFixture(t)
	u := f.insert(t, &models.User{
		Cedula: "123", Nombre: "Ana", Email: "a@x.com", Departamento: "Sistemas",
		Role: models.RoleInstructor, Activo: models.Active(true),
	})

	res, err := f.svc.LoginInstructor(context.Background(), "123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.Equal(t, UserView{ID: u.ID, Cedula: "123", Nombre: "Ana", Email: "a@x.com", Role: models.RoleInstructor, Departamento: "Sistemas"}, res.User)

	claims, err := f.issuer.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "123", claims.Cedula)
	assert.Equal(t, "Ana", claims.Nombre)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleInstructor, claims.Role)
	assert.Empty(t, claims.Username)
}

func TestLoginInstructor_NotFound(t *testing.T) {
	f := newFixture(t)
	f.insert(t, &models.User{Cedula: "123", Nombre: "Ana", Email: "a@x.com", Role: models.RoleInstructor})

	for _, id := range []string{"999", "12", "1234", "ABC"} {
		_, err := f.svc.LoginInstructor(context.Background(), id)
		require.ErrorIs(t, err, ErrNotFound, id)
		assert.Equal(t, MsgInstructorNotFound, err.Error())
	}
}

func TestLoginInstructor_WrongRole(t *testing.T) {
	f := newFixture(t)
	f.insert(t, &models.User{Cedula: "777", Username: "boss", Nombre: "Boss", Email: "b@x.com", Role: models.RoleAdministrator, Activo: models.Active(true)})

	_, err := f.svc.LoginInstructor(context.Background(), "777")
	require.ErrorIs(t, err, ErrWrongRole)
	assert.Equal(t, MsgNotInstructor, err.Error())
}

func TestLoginInstructor_ActiveFlagCoercion(t *testing.T) {
	cases := []struct {
		name   string
		flag   models.ActiveFlag
		active bool
	}{
		{"true", models.Active(true), true},
		{"one", models.NewActiveFlag(1), true},
		{"string true", models.NewActiveFlag("true"), true},
		{"absent", models.ActiveFlag{}, true},
		{"false", models.Active(false), false},
		{"zero", models.NewActiveFlag(0), false},
		{"string false", models.NewActiveFlag("false"), false},
		{"empty string", models.NewActiveFlag(""), false},
		{"null", models.NewActiveFlag(nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.insert(t, &models.User{Cedula: "42", Nombre: "X", Email: "x@x.com", Role: models.RoleInstructor, Activo: tc.flag})
			_, err := f.svc.LoginInstructor(context.Background(), "42")
			if tc.active {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestLoginAdministrator_Success(t *testing.T) {
	f := newFixture(t)
	u := f.admin(t, "root", "s3cret", models.Active(true))

	res, err := f.svc.LoginAdministrator(context.Background(), "root", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, UserView{ID: u.ID, Username: "root", Nombre: "Admin", Email: "admin@x.com", Role: models.RoleAdministrator}, res.User)

	claims, err := f.issuer.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, models.RoleAdministrator, claims.Role)
	assert.Empty(t, claims.Cedula)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(b), u.PasswordHash)
	assert.NotContains(t, string(b), "password")
}

func TestLoginAdministrator_SameMessageForUnknownUserAndWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.admin(t, "root", "s3cret", models.Active(true))
	ctx := context.Background()

	_, errWrongPass := f.svc.LoginAdministrator(ctx, "root", "nope")
	_, errUnknown := f.svc.LoginAdministrator(ctx, "ghost", "s3cret")

	require.ErrorIs(t, errWrongPass, ErrBadCredentials)
	require.ErrorIs(t, errUnknown, ErrNotFound)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.Equal(t, MsgAdminBadCredentials, errWrongPass.Error())
}

func TestLoginAdministrator_StrictActiveFlag(t *testing.T) {
	f := newFixture(t)
	f.admin(t, "loose", "pw", models.NewActiveFlag("true"))
	f.admin(t, "off", "pw", models.Active(false))

	for _, name := range []string{"loose", "off"} {
		_, err := f.svc.LoginAdministrator(context.Background(), name, "pw")
		require.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestLoginAdministrator_WrongRole(t *testing.T) {
	f := newFixture(t)
	f.insert(t, &models.User{Cedula: "1", Username: "profe", Nombre: "T", Email: "t@x.com", Role: models.RoleInstructor, Activo: models.Active(true)})

	_, err := f.svc.LoginAdministrator(context.Background(), "profe", "whatever")
	require.ErrorIs(t, err, ErrWrongRole)
	assert.Equal(t, MsgNotAdministrator, err.Error())
}

func TestLogin_EmptyInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.LoginInstructor(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.LoginAdministrator(context.Background(), "root", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

type failingDir struct{}

func (failingDir) FindByIdentifier(ctx context.Context, cedula string) (*models.User, error) {
	return nil, errors.New("connection reset")
}

func (failingDir) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, errors.New("connection reset")
}

func TestLogin_DirectoryErrorIsNotAuthFailure(t *testing.T) {
	svc := NewService(failingDir{}, security.NewHasher(bcrypt.MinCost), tokens.NewIssuer(testSecret, time.Hour))
	_, err := svc.LoginInstructor(context.Background(), "1")
	require.Error(t, err)
	var authErr *Error
	assert.False(t, errors.As(err, &authErr))
}
