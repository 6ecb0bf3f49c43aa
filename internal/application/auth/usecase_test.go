package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-movimientos/internal/application/auth"
	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/pkg/jwt"
)

const secret = "secreto-de-prueba"

type fakeUsers struct {
	users map[string]*entity.User
	err   error
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[strings.ToLower(email)], nil
}

func newAuth(t *testing.T, status string) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := fakeUsers{users: map[string]*entity.User{
		"ana@bodega.co": {ID: 5, Email: "ana@bodega.co", Name: "Ana", PasswordHash: string(hash), Role: entity.RoleBodeguero, Status: status},
	}}
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: secret, ExpMinutes: 10, Issuer: "test"})
}

func TestLogin_CredencialesValidas(t *testing.T) {
	uc := newAuth(t, entity.UserStatusActive)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Email: " Ana@Bodega.co ", Password: "clave123"})

	require.NoError(t, err)
	assert.Equal(t, int64(5), res.User.ID)
	userID, role, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), userID)
	assert.Equal(t, entity.RoleBodeguero, role)
}

func TestLogin_Rechazos(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		email   string
		pass    string
		wantErr error
	}{
		{"contraseña incorrecta", entity.UserStatusActive, "ana@bodega.co", "otra", domain.ErrUnauthorized},
		{"email inexistente", entity.UserStatusActive, "nadie@bodega.co", "clave123", domain.ErrUnauthorized},
		{"usuario inactivo", entity.UserStatusInactive, "ana@bodega.co", "clave123", domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAuth(t, tt.status).Login(context.Background(), dto.LoginRequest{Email: tt.email, Password: tt.pass})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_ErrorDelRepositorio(t *testing.T) {
	boom := errors.New("bd caída")
	uc := auth.NewAuthUseCase(fakeUsers{err: boom}, auth.JWTConfig{Secret: secret})

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "a@b.co", Password: "x"})

	assert.ErrorIs(t, err, boom)
}
