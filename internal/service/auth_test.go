package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ajuda-api/internal/models"

	"go.uber.org/zap"
)

type fakeOperadorRepo struct {
	operadores map[string]*models.Operador
	nextID     int64
}

func newFakeOperadorRepo() *fakeOperadorRepo {
	return &fakeOperadorRepo{operadores: make(map[string]*models.Operador), nextID: 1}
}

func (f *fakeOperadorRepo) GetOperadorByUsername(_ context.Context, username string) (*models.Operador, error) {
	return f.operadores[username], nil
}

func (f *fakeOperadorRepo) CreateOperador(_ context.Context, operador *models.Operador) error {
	operador.ID = f.nextID
	f.nextID++
	operador.CreatedAt = time.Now()
	f.operadores[operador.Username] = operador
	return nil
}

func (f *fakeOperadorRepo) CountOperadores(_ context.Context) (int, error) {
	return len(f.operadores), nil
}

func testAuthService(repo *fakeOperadorRepo) AuthService {
	return NewAuthService(repo, []byte("test-secret"), time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeOperadorRepo()
	svc := testAuthService(repo)
	ctx := context.Background()

	operador, err := svc.Register(ctx, "admin", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if operador.PasswordHash == "" || operador.PasswordHash == "correct horse battery" {
		t.Fatal("password stored unhashed")
	}

	token, expiresAt, err := svc.Login(ctx, "admin", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("token already expired")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeOperadorRepo()
	svc := testAuthService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "admin", "correct horse battery"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, err := svc.Login(ctx, "admin", "wrong password!!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownOperador(t *testing.T) {
	svc := testAuthService(newFakeOperadorRepo())

	_, _, err := svc.Login(context.Background(), "ghost", "whatever12345")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterOnlyOnce(t *testing.T) {
	repo := newFakeOperadorRepo()
	svc := testAuthService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "admin", "correct horse battery"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, "intruder", "another password1")
	if !errors.Is(err, ErrOperadorExists) {
		t.Fatalf("second Register error = %v, want ErrOperadorExists", err)
	}
}
