package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodec(t *testing.T) {
	c := Codec{}

	data, err := c.Marshal(&JoinNatilleraRequest{InvitationCode: "ABC234"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"invitationCode":"ABC234"}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var req JoinNatilleraRequest
	if err := c.Unmarshal(data, &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.InvitationCode != "ABC234" {
		t.Errorf("Expected code ABC234, got %q", req.InvitationCode)
	}

	data, err = c.Marshal(wrapperspb.String("hola"))
	if err != nil {
		t.Fatalf("Marshal proto failed: %v", err)
	}
	if string(data) != `"hola"` {
		t.Errorf("Expected protojson wrapper encoding, got %s", data)
	}

	var empty emptypb.Empty
	if err := c.Unmarshal(nil, &empty); err != nil {
		t.Errorf("Unmarshal of empty body failed: %v", err)
	}
	if err := c.Unmarshal([]byte("{"), &req); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

type echoAuth struct{}

func (echoAuth) Register(_ context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return connect.NewResponse(&AuthResponse{User: &User{Email: req.Msg.Email}, Token: "t"}), nil
}

func (echoAuth) Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("correo o contraseña incorrectos"))
}

func (echoAuth) Logout(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (echoAuth) GetCurrentUser(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[UserResponse], error) {
	return connect.NewResponse(&UserResponse{User: &User{ID: "u1"}}), nil
}

func (echoAuth) UpdateDisplayName(_ context.Context, req *connect.Request[UpdateDisplayNameRequest]) (*connect.Response[UserResponse], error) {
	return connect.NewResponse(&UserResponse{User: &User{DisplayName: req.Msg.DisplayName}}), nil
}

func TestHandlerRoundTrip(t *testing.T) {
	path, handler := NewAuthServiceHandler(echoAuth{})
	if path != "/natiapp.v1.AuthService/" {
		t.Fatalf("Unexpected path %q", path)
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewAuthServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	resp, err := client.Register(ctx, connect.NewRequest(&RegisterRequest{Email: "ana@example.com"}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.User.Email != "ana@example.com" {
		t.Errorf("Expected echoed email, got %q", resp.Msg.User.Email)
	}

	if _, err := client.Logout(ctx, connect.NewRequest(&emptypb.Empty{})); err != nil {
		t.Errorf("Logout failed: %v", err)
	}

	_, err = client.Login(ctx, connect.NewRequest(&LoginRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("Expected Unauthenticated, got %v", err)
	}

	res, err := http.Post(server.URL+"/natiapp.v1.AuthService/Unknown", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown procedure, got %d", res.StatusCode)
	}
}
