package api

import (
	"context"
	"net/http"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	Error       string `json:"error,omitempty"`
}

type OTPLoginResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// InfoResponse is the backend's view of the current session.
type InfoResponse struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsSuperuser     bool   `json:"is_superuser"`
	SecondFactor    bool   `json:"second_factor"`
}

// Login checks the first factor. A rejected password comes back either as a
// 401 *StatusError or as Success == false, depending on the backend.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/userprofile/login/", nil,
		LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP submits a one-time password for the second factor.
func (c *Client) VerifyOTP(ctx context.Context, key string) (*OTPLoginResponse, error) {
	var out OTPLoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/userprofile/otp-login/", nil,
		map[string]string{"key": key}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TOTPURL returns the otpauth:// provisioning URL, or "" if the backend
// omitted it.
func (c *Client) TOTPURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/userprofile/totp-url/", nil, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var out InfoResponse
	if err := c.doJSON(ctx, http.MethodGet, "/userprofile/info/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OTPStatus(ctx context.Context) (bool, error) {
	var out struct {
		OTPGood bool `json:"otp_good"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/userprofile/otp-status/", nil, nil, &out); err != nil {
		return false, err
	}
	return out.OTPGood, nil
}

// Logout invalidates the backend session. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/userprofile/logout/", nil, nil, nil)
}
