package api

import (
	"context"
	"net/http"

	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
)

// SignupRequest registers a new account.
type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	MobileNumber    string `json:"mobileNumber" validate:"required,len=10,numeric"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest signs in with mobile number and password.
type LoginRequest struct {
	MobileNumber string `json:"mobileNumber" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// ResetPasswordRequest completes a password reset with the emailed OTP.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateRoleRequest grants a role to a user. Admin only.
type UpdateRoleRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=USER ADMIN"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

const refreshFlightKey = "refresh"

// Signup creates an account. It does not sign in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Ack, error) {
	if err := model.ValidateInput(req); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPost, PathSignup, req)
}

// Login signs in and persists the returned token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*model.AuthTokens, error) {
	if err := model.ValidateInput(req); err != nil {
		return nil, err
	}
	r, err := jsonRequest(http.MethodPost, PathLogin, req)
	if err != nil {
		return nil, err
	}
	var tokens model.AuthTokens
	if _, err := c.call(ctx, r, &tokens); err != nil {
		return nil, err
	}
	if err := c.establish(ctx, &tokens); err != nil {
		return nil, err
	}
	logger.Info(ctx, "login succeeded")
	return &tokens, nil
}

// Logout ends the session locally. The backend is not contacted.
func (c *Client) Logout(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	return c.session.End(ctx)
}

// RequestPasswordReset asks the backend to email an OTP.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*Ack, error) {
	req := passwordResetRequest{Email: email}
	if err := model.ValidateInput(req); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPost, PathRequestPasswordReset, req)
}

// ResetPassword sets a new password using the OTP.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Ack, error) {
	if err := model.ValidateInput(req); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPost, PathResetPassword, req)
}

// UpdateRole changes the role of another user.
func (c *Client) UpdateRole(ctx context.Context, req UpdateRoleRequest) (*Ack, error) {
	if err := model.ValidateInput(req); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPost, PathUpdateRole, req)
}

// RefreshSession exchanges the stored refresh token for a new pair.
// Concurrent callers share one in-flight request. It is never called implicitly.
// The shared request is detached from the starting caller's cancellation and is
// bounded by the client timeout.
func (c *Client) RefreshSession(ctx context.Context) (*model.AuthTokens, error) {
	if c.session == nil {
		return nil, pkgerrors.New(pkgerrors.SessionMissing)
	}
	result, err := c.refresh.Do(refreshFlightKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		refreshToken := c.session.RefreshToken(ctx)
		if refreshToken == "" {
			return nil, pkgerrors.New(pkgerrors.SessionMissing)
		}
		r, err := jsonRequest(http.MethodPost, PathRefresh, refreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return nil, err
		}
		var tokens model.AuthTokens
		if _, err := c.call(ctx, r, &tokens); err != nil {
			logger.Warn(ctx, "refresh session failed", zap.Error(err))
			return nil, err
		}
		if err := c.establish(ctx, &tokens); err != nil {
			return nil, err
		}
		return &tokens, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.AuthTokens), nil
}

func (c *Client) establish(ctx context.Context, tokens *model.AuthTokens) error {
	if c.session == nil {
		return nil
	}
	if err := c.session.Establish(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	return nil
}
