package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"campuscomplaint/internal/api"
	"campuscomplaint/internal/backend/service"
	"campuscomplaint/internal/common/kv"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	"campuscomplaint/internal/session"
	"campuscomplaint/internal/tokenstore"
	pkgerrors "campuscomplaint/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminMobile   = "9000000000"
	adminPassword = "admin-pass"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type capturingSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *capturingSender) SendOTP(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes == nil {
		s.codes = make(map[string]string)
	}
	s.codes[email] = code
	return nil
}

func (s *capturingSender) code(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}

type harness struct {
	server *httptest.Server
	sender *capturingSender
}

func newHarness(t *testing.T, comps Components) *harness {
	t.Helper()
	sender := &capturingSender{}
	comps.OTPSender = sender
	srv, err := New(context.Background(), Config{
		JWT:   service.TokenConfig{Secret: "test-secret"},
		Admin: AdminConfig{Name: "Admin", MobileNumber: adminMobile, Email: "admin@campus.edu", Password: adminPassword},
	}, comps)
	require.NoError(t, err)
	server := httptest.NewServer(srv.Engine)
	t.Cleanup(server.Close)
	return &harness{server: server, sender: sender}
}

func (h *harness) client(t *testing.T) (*api.Client, *session.Manager) {
	t.Helper()
	sess := session.NewManager(tokenstore.New(kv.NewMemoryStore()))
	return api.New(api.Config{BaseURL: h.server.URL, Timeout: 5 * time.Second}, sess), sess
}

func signupAndLogin(t *testing.T, client *api.Client, name, mobile, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := client.Signup(ctx, api.SignupRequest{Name: name, MobileNumber: mobile, Email: email, Password: "secret", ConfirmPassword: "secret"})
	require.NoError(t, err)
	_, err = client.Login(ctx, api.LoginRequest{MobileNumber: mobile, Password: "secret"})
	require.NoError(t, err)
}

func TestSignupLoginProfile(t *testing.T) {
	h := newHarness(t, Components{})
	client, sess := h.client(t)
	ctx := context.Background()

	signupAndLogin(t, client, "Asha", "9876543210", "asha@campus.edu")
	assert.Equal(t, session.RouteHome, session.Bootstrap(ctx, sess))

	profile, err := client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
	assert.Equal(t, []string{model.RoleUser}, profile.Roles)

	_, err = client.UpdateProfile(ctx, api.UpdateProfileRequest{Name: "Asha K", MobileNumber: "9876543211"})
	require.NoError(t, err)
	profile, err = client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", profile.Name)

	_, err = client.Signup(ctx, api.SignupRequest{Name: "Dup", MobileNumber: "9876543211", Email: "dup@campus.edu", Password: "x", ConfirmPassword: "x"})
	require.Error(t, err)
	assert.Equal(t, "Mobile number already registered", pkgerrors.UserMessage(err))

	require.NoError(t, client.Logout(ctx))
	assert.Equal(t, session.RouteLogin, session.Bootstrap(ctx, sess))
	_, err = client.GetProfile(ctx)
	assert.True(t, pkgerrors.Is(err, pkgerrors.Unauthorized), "got %v", err)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, Components{})
	client, sess := h.client(t)
	_, err := client.Login(context.Background(), api.LoginRequest{MobileNumber: adminMobile, Password: "wrong"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.Unauthorized), "got %v", err)
	assert.Equal(t, "Invalid mobile number or password", pkgerrors.UserMessage(err))
	_, ok := sess.Current(context.Background())
	assert.False(t, ok)
}

func TestComplaintLifecycle(t *testing.T) {
	h := newHarness(t, Components{})
	ctx := context.Background()

	student, _ := h.client(t)
	signupAndLogin(t, student, "Ravi", "9123456780", "ravi@campus.edu")

	photoPath := filepath.Join(t.TempDir(), "lamp.png")
	require.NoError(t, os.WriteFile(photoPath, []byte("\x89PNG-fake"), 0o600))

	flow := complaint.NewFlow(student, &complaint.StaticLocationService{Coords: complaint.Coordinates{Latitude: 12.9, Longitude: 77.6}}, nil)
	flow.SetDescription("Broken streetlight")
	flow.AttachPhoto(photoPath)
	_, err := flow.LocateDevice(ctx)
	require.NoError(t, err)
	created, err := flow.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, 12.9, created.Latitude)
	require.NotEmpty(t, created.PhotoURL)
	assert.Equal(t, complaint.Draft{}, flow.Draft)

	resp, err := http.Get(created.PhotoURL)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG-fake", string(body))

	mine, err := student.GetMyComplaints(ctx, api.ComplaintFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, mine.Content, 1)
	assert.True(t, mine.Last)

	_, err = student.GetAllComplaints(ctx, api.ComplaintFilter{}, 0, 10)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ServerRejected), "students must not list all complaints: %v", err)

	admin, _ := h.client(t)
	_, err = admin.Login(ctx, api.LoginRequest{MobileNumber: adminMobile, Password: adminPassword})
	require.NoError(t, err)

	updated, err := admin.UpdateComplaint(ctx, created.ID, api.ComplaintChange{Status: model.StatusInProgress, Note: "Electrician assigned"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	latest, ok := updated.LatestUpdate()
	require.True(t, ok)
	assert.Equal(t, "Electrician assigned", latest.Note)

	detail, err := admin.GetComplaintDetail(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Updates, 2)

	unread, err := student.GetUnreadNotifications(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, unread.Content, 1)
	require.NotNil(t, unread.Content[0].RelatedComplaintID)
	assert.Equal(t, created.ID, *unread.Content[0].RelatedComplaintID)

	_, err = student.MarkNotificationsAsRead(ctx, []int64{unread.Content[0].ID})
	require.NoError(t, err)
	unread, err = student.GetUnreadNotifications(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, unread.Content)

	_, err = admin.BulkUpdateComplaints(ctx, api.BulkComplaintChange{ComplaintIDs: []int64{created.ID, 999}, Status: model.StatusResolved})
	require.NoError(t, err)
	resolved, err := admin.SearchComplaints(ctx, "streetlight", api.ComplaintFilter{Status: model.StatusResolved}, 0, 20)
	require.NoError(t, err)
	assert.Len(t, resolved.Content, 1)

	_, err = admin.GetComplaintDetail(ctx, 999)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ServerRejected))
}

func TestPagerOverBackend(t *testing.T) {
	h := newHarness(t, Components{})
	ctx := context.Background()
	client, _ := h.client(t)
	signupAndLogin(t, client, "Meera", "9000011111", "meera@campus.edu")

	for i := 0; i < 5; i++ {
		payload, err := complaint.Assemble(complaint.Draft{Description: "leak", Location: &complaint.Location{Latitude: 1, Longitude: 1}})
		require.NoError(t, err)
		_, err = client.SubmitComplaint(ctx, payload)
		require.NoError(t, err)
	}

	pager := api.NewPager(2, func(ctx context.Context, page, size int) (*model.Page[model.Complaint], error) {
		return client.GetMyComplaints(ctx, api.ComplaintFilter{}, page, size)
	})
	for pager.HasMore() {
		_, err := pager.LoadMore(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, pager.Items(), 5)
	assert.Equal(t, 2, pager.Page())
}

func TestPasswordResetWithRedisOTPStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := kv.DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	otpStore, err := kv.NewRedisStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = otpStore.Close() })

	h := newHarness(t, Components{OTPStore: otpStore})
	ctx := context.Background()
	client, _ := h.client(t)
	_, err = client.Signup(ctx, api.SignupRequest{Name: "Neha", MobileNumber: "9222233333", Email: "neha@campus.edu", Password: "old", ConfirmPassword: "old"})
	require.NoError(t, err)

	_, err = client.RequestPasswordReset(ctx, "neha@campus.edu")
	require.NoError(t, err)
	code := h.sender.code("neha@campus.edu")
	require.Len(t, code, 6)

	_, err = client.ResetPassword(ctx, api.ResetPasswordRequest{Email: "neha@campus.edu", OTP: "000000x", NewPassword: "new"})
	assert.Equal(t, "Invalid or expired OTP", pkgerrors.UserMessage(err))

	_, err = client.ResetPassword(ctx, api.ResetPasswordRequest{Email: "neha@campus.edu", OTP: code, NewPassword: "new"})
	require.NoError(t, err)
	_, err = client.ResetPassword(ctx, api.ResetPasswordRequest{Email: "neha@campus.edu", OTP: code, NewPassword: "again"})
	assert.Error(t, err, "codes are single use")

	_, err = client.Login(ctx, api.LoginRequest{MobileNumber: "9222233333", Password: "new"})
	require.NoError(t, err)
}

func TestRefreshAndRoleUpdate(t *testing.T) {
	h := newHarness(t, Components{})
	ctx := context.Background()

	student, studentSession := h.client(t)
	signupAndLogin(t, student, "Kiran", "9333344444", "kiran@campus.edu")
	before := studentSession.AccessToken(ctx)

	admin, _ := h.client(t)
	_, err := admin.Login(ctx, api.LoginRequest{MobileNumber: adminMobile, Password: adminPassword})
	require.NoError(t, err)
	users, err := admin.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	var studentID int64
	for _, u := range users {
		if u.MobileNumber == "9333344444" {
			studentID = u.ID
		}
	}
	require.NotZero(t, studentID)
	_, err = admin.UpdateRole(ctx, api.UpdateRoleRequest{UserID: studentID, Role: model.RoleAdmin})
	require.NoError(t, err)

	// JWTs carry second precision; wait so the refreshed token differs.
	time.Sleep(1100 * time.Millisecond)
	_, err = student.RefreshSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before, studentSession.AccessToken(ctx))

	_, err = student.GetAllComplaints(ctx, api.ComplaintFilter{}, 0, 10)
	assert.NoError(t, err, "refreshed token should carry the new role")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, Components{})
	_, _ = http.Get(h.server.URL + "/health")
	resp, err := http.Get(h.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "campuscomplaint_stub_http_requests_total")
}
