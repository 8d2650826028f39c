package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
)

type markReadRequest struct {
	NotificationIDs []int64 `json:"notificationIds"`
}

func pageQuery(page, size int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	return query
}

func (c *Client) GetUnreadNotifications(ctx context.Context, page, size int) (*model.Page[model.Notification], error) {
	var out model.Page[model.Notification]
	r := request{method: http.MethodGet, path: PathUnreadNotifications, query: pageQuery(page, size)}
	if _, err := c.call(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkNotificationsAsRead(ctx context.Context, ids []int64) (*Ack, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, "notificationIds")
	}
	return c.ack(ctx, http.MethodPost, PathMarkNotifications, markReadRequest{NotificationIDs: ids})
}
