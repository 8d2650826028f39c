package session

import (
	"context"

	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
)

// Route names the first screen shown after start-up.
type Route string

const (
	RouteLogin Route = "login"
	RouteHome  Route = "home"
)

// Bootstrap picks the initial route from the stored session.
func Bootstrap(ctx context.Context, m *Manager) Route {
	cred, ok := m.Current(ctx)
	if !ok {
		logger.Debug(ctx, "no valid session, starting at login")
		return RouteLogin
	}
	logger.Debug(ctx, "resuming session", zap.Time("expires_at", cred.ExpiresAt))
	return RouteHome
}
