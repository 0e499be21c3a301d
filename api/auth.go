package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the token issued by the backend. Role is empty unless the
// backend reports it alongside the token.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
}

// RegisterRequest is the account creation body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Login exchanges credentials for a token. The backend answers either with the bare
// token (plain text or a JSON string) or with {"token", "role"}. A 401 here is a
// credential failure and does not run the Unauthorized hook.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	body, err := c.do(ctx, call{
		op:        "login",
		method:    http.MethodPost,
		path:      "login",
		body:      creds,
		fallback:  "login failed",
		anonymous: true,
	})
	if err != nil {
		return LoginResponse{}, err
	}
	return parseLoginResponse(body), nil
}

func parseLoginResponse(body []byte) LoginResponse {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return LoginResponse{}
	}
	switch body[0] {
	case '{':
		var out LoginResponse
		if err := json.Unmarshal(body, &out); err == nil {
			out.Token = strings.TrimSpace(out.Token)
			return out
		}
		return LoginResponse{}
	case '"':
		var tok string
		if err := json.Unmarshal(body, &tok); err == nil {
			return LoginResponse{Token: strings.TrimSpace(tok)}
		}
	}
	return LoginResponse{Token: string(body)}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.do(ctx, call{
		op:        "register",
		method:    http.MethodPost,
		path:      "register",
		body:      req,
		fallback:  "registration failed",
		anonymous: true,
	})
	return err
}
