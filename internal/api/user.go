package api

import (
	"context"
	"net/http"

	"campuscomplaint/internal/model"
)

// UpdateProfileRequest edits the signed-in user's profile.
type UpdateProfileRequest struct {
	Name         string `json:"name" validate:"required"`
	MobileNumber string `json:"mobileNumber" validate:"required,len=10,numeric"`
}

func (c *Client) GetProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if _, err := c.call(ctx, request{method: http.MethodGet, path: PathProfile}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Ack, error) {
	if err := model.ValidateInput(req); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPut, PathEditUser, req)
}

// GetAllUsers lists every account. Admin only.
func (c *Client) GetAllUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := c.call(ctx, request{method: http.MethodGet, path: PathUsers}, &users); err != nil {
		return nil, err
	}
	return users, nil
}
