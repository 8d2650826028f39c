package api

import (
	"strconv"
	"strings"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://app.undefineddevelopers.online/campuscomplaint"

// Endpoint paths relative to the base URL.
const (
	PathSignup               = "/auth/signup"
	PathLogin                = "/auth/login"
	PathRefresh              = "/auth/refresh"
	PathUpdateRole           = "/auth/update-role"
	PathRequestPasswordReset = "/auth/request-password-reset"
	PathResetPassword        = "/auth/reset-password"

	PathProfile  = "/user/profile"
	PathUsers    = "/user"
	PathEditUser = "/user/edit"

	PathUnreadNotifications = "/api/notifications/unread"
	PathMarkNotifications   = "/api/notifications/mark-read"

	PathSubmitComplaint  = "/api/complaints/submit"
	PathComplaintsMap    = "/api/complaints/map/list"
	PathMyComplaints     = "/api/complaints/history/my"
	PathSearchComplaints = "/api/complaints/admin/search"
	PathAllComplaints    = "/api/complaints/admin/"
	PathBulkUpdate       = "/api/complaints/admin/bulk-update"
)

// ComplaintPath is the admin detail/update path for one complaint.
func ComplaintPath(id int64) string {
	return PathAllComplaints + strconv.FormatInt(id, 10)
}

// authRoutes never carry a bearer token.
var authRoutes = []string{
	PathSignup,
	PathLogin,
	PathRequestPasswordReset,
	PathResetPassword,
}

// IsAuthRoute reports whether path is a credential-establishing route.
func IsAuthRoute(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, route := range authRoutes {
		if path == route {
			return true
		}
	}
	return false
}
