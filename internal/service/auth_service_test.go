package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/natiapp/internal/rpc"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
		Email:       "Ana@Example.com",
		Password:    "password123",
		DisplayName: "  Ana  ",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.Token == "" {
		t.Error("expected token in response")
	}
	if resp.Msg.User.Email != "ana@example.com" {
		t.Errorf("expected normalised email, got %s", resp.Msg.User.Email)
	}
	if resp.Msg.User.DisplayName != "Ana" {
		t.Errorf("expected trimmed display name, got %q", resp.Msg.User.DisplayName)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
			Email:       "ana@example.com",
			Password:    "password123",
			DisplayName: "Otra Ana",
		}))
		requireCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
			Email:       "luis@example.com",
			Password:    "short",
			DisplayName: "Luis",
		}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
			Email:    "ana@example.com",
			Password: "wrong-password",
		}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("login", func(t *testing.T) {
		login, err := env.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
			Email:    "ana@example.com",
			Password: "password123",
		}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.Msg.User.ID != resp.Msg.User.ID {
			t.Errorf("expected user %s, got %s", resp.Msg.User.ID, login.Msg.User.ID)
		}

		current, err := env.auth.GetCurrentUser(ctx, empty(login.Msg.Token))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if current.Msg.User.DisplayName != "Ana" {
			t.Errorf("expected Ana, got %s", current.Msg.User.DisplayName)
		}

		if _, err := env.auth.Logout(ctx, empty(login.Msg.Token)); err != nil {
			t.Errorf("Logout failed: %v", err)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&emptypb.Empty{}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = env.natilleras.ListMyNatilleras(ctx, empty("not-a-token"))
	requireCode(t, err, connect.CodeUnauthenticated)

	req := empty("ignored")
	req.Header().Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = env.natilleras.ListMyNatilleras(ctx, req)
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestUpdateDisplayName(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	ana := env.register(t, "ana@example.com", "Ana")

	resp, err := env.auth.UpdateDisplayName(ctx, withToken(&rpc.UpdateDisplayNameRequest{
		DisplayName: "Ana María",
	}, ana.token))
	if err != nil {
		t.Fatalf("UpdateDisplayName failed: %v", err)
	}
	if resp.Msg.User.DisplayName != "Ana María" {
		t.Errorf("expected new name, got %s", resp.Msg.User.DisplayName)
	}
	if resp.Msg.Token == "" {
		t.Fatal("expected refreshed token")
	}

	current, err := env.auth.GetCurrentUser(ctx, empty(resp.Msg.Token))
	if err != nil {
		t.Fatalf("GetCurrentUser with refreshed token failed: %v", err)
	}
	if current.Msg.User.DisplayName != "Ana María" {
		t.Errorf("expected stored name, got %s", current.Msg.User.DisplayName)
	}

	_, err = env.auth.UpdateDisplayName(ctx, withToken(&rpc.UpdateDisplayNameRequest{DisplayName: "   "}, ana.token))
	requireCode(t, err, connect.CodeInvalidArgument)
}
