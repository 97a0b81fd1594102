package backend

import (
	"context"
	"net/http"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	"github.com/lumenshop/storefront/internal/ports"
)

// AuthClient implements ports.AuthAPI against the backend's /auth/*
// endpoints, going through the shared pipeline so identity fetches
// participate in the refresh protocol like any other call.
type AuthClient struct {
	client *Client
}

var _ ports.AuthAPI = (*AuthClient)(nil)

// NewAuthClient wraps the pipeline with the auth endpoint contract.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

// userPayload is the backend wire shape of a user.
type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (p userPayload) toDomain() domainauth.User {
	return domainauth.User{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Role:  domainauth.Role(p.Role),
	}
}

// sessionPayload is the response of login and register.
type sessionPayload struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (p sessionPayload) credentials() domainauth.Credentials {
	return domainauth.Credentials{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

// Login exchanges email and password for an identity and a credential pair.
func (a *AuthClient) Login(ctx context.Context, email, password string) (domainauth.User, domainauth.Credentials, error) {
	var out sessionPayload
	err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
		Out: &out,
	})
	if err != nil {
		return domainauth.User{}, domainauth.Credentials{}, err
	}
	return out.User.toDomain(), out.credentials(), nil
}

// Register creates an account and returns the new identity and pair.
func (a *AuthClient) Register(ctx context.Context, in ports.RegisterInput) (domainauth.User, domainauth.Credentials, error) {
	var out sessionPayload
	err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: map[string]string{
			"name":     in.Name,
			"email":    in.Email,
			"phone":    in.Phone,
			"password": in.Password,
		},
		Out: &out,
	})
	if err != nil {
		return domainauth.User{}, domainauth.Credentials{}, err
	}
	return out.User.toDomain(), out.credentials(), nil
}

// Me fetches the identity bound to the current access credential.
func (a *AuthClient) Me(ctx context.Context) (domainauth.User, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	err := a.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Out:    &out,
	})
	if err != nil {
		return domainauth.User{}, err
	}
	return out.User.toDomain(), nil
}

// Logout notifies the backend that the session ends. Callers treat it as
// best-effort.
func (a *AuthClient) Logout(ctx context.Context) error {
	return a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
	})
}
