package gateway

import (
	"context"
	"fmt"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

// Authenticate implements session.Authenticator against the login endpoint.
// A rejection comes back as the backend's *APIError.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*session.AuthResult, error) {
	resp, err := c.Post(ctx, c.loginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(resp)
}

// Register implements session.Authenticator against the signup endpoint.
// Self-service accounts are always patients.
func (c *Client) Register(ctx context.Context, req session.SignupRequest) (*session.AuthResult, error) {
	resp, err := c.Post(ctx, c.signupPath, signupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     session.RolePatient,
	})
	if err != nil {
		if IsAlreadyRegistered(err) {
			return nil, errors.NewAlreadyRegisteredError(err)
		}
		return nil, err
	}
	return decodeAuthResult(resp)
}

func decodeAuthResult(resp *Response) (*session.AuthResult, error) {
	var result session.AuthResult
	if err := resp.Decode(&result); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIDecode, "unexpected authentication response", err)
	}
	if result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("%w: token or user missing", session.ErrIncompleteSession)
	}
	return &result, nil
}
