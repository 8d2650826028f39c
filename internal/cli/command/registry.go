package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"campuscomplaint/internal/api"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	"campuscomplaint/internal/session"
)

var (
	pageFields = []Field{
		{Name: "page", Prompt: "page", Type: FieldInt},
		{Name: "size", Prompt: "size", Type: FieldInt},
	}
	filterFields = []Field{
		{Name: "status", Prompt: "status", Type: FieldString},
		{Name: "from", Aliases: []string{"fromDate", "from_date"}, Prompt: "from (YYYY-MM-DD)", Type: FieldDate},
	}
)

func withFields(groups ...[]Field) []Field {
	var fields []Field
	for _, group := range groups {
		fields = append(fields, group...)
	}
	return fields
}

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service: "auth",
			Action:  "signup",
			Summary: "create an account",
			Fields: []Field{
				{Name: "name", Prompt: "name", Type: FieldString, Required: true},
				{Name: "mobile", Aliases: []string{"mobileNumber"}, Prompt: "mobile number", Type: FieldString, Required: true},
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true, Secret: true},
				{Name: "confirm", Aliases: []string{"confirmPassword", "confirm_password"}, Prompt: "confirm password", Type: FieldString, Required: true, Secret: true},
			},
			Run: signup,
		},
		{
			Service: "auth",
			Action:  "login",
			Summary: "sign in and store the session",
			Fields: []Field{
				{Name: "mobile", Aliases: []string{"mobileNumber"}, Prompt: "mobile number", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true, Secret: true},
			},
			Run: login,
		},
		{Service: "auth", Action: "logout", Summary: "forget the stored session", Run: logout},
		{Service: "auth", Action: "refresh", Summary: "exchange the refresh token for a new pair", Run: refresh},
		{Service: "auth", Action: "status", Summary: "show the start-up route and session expiry", Run: status},
		{
			Service: "auth",
			Action:  "request-reset",
			Summary: "email a password reset code",
			Fields: []Field{
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
			},
			Run: requestReset,
		},
		{
			Service: "auth",
			Action:  "reset-password",
			Summary: "set a new password with the emailed code",
			Fields: []Field{
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "otp", Prompt: "code", Type: FieldString, Required: true},
				{Name: "password", Aliases: []string{"newPassword", "new_password"}, Prompt: "new password", Type: FieldString, Required: true, Secret: true},
			},
			Run: resetPassword,
		},
		{
			Service: "auth",
			Action:  "update-role",
			Summary: "change a user's role (admin)",
			Fields: []Field{
				{Name: "user_id", Aliases: []string{"userId", "id"}, Prompt: "user id", Type: FieldInt64, Required: true},
				{Name: "role", Prompt: "role (USER|ADMIN)", Type: FieldString, Required: true},
			},
			Run: updateRole,
		},
		{Service: "user", Action: "profile", Summary: "show the signed-in profile", Run: profile},
		{
			Service: "user",
			Action:  "edit",
			Summary: "update name and mobile number",
			Fields: []Field{
				{Name: "name", Prompt: "name", Type: FieldString, Required: true},
				{Name: "mobile", Aliases: []string{"mobileNumber"}, Prompt: "mobile number", Type: FieldString, Required: true},
			},
			Run: editProfile,
		},
		{Service: "user", Action: "list", Summary: "list every user (admin)", Run: listUsers},
		{Service: "notification", Action: "unread", Summary: "list unread notifications", Fields: pageFields, Run: unreadNotifications},
		{
			Service: "notification",
			Action:  "mark-read",
			Summary: "mark notifications as read",
			Fields: []Field{
				{Name: "ids", Prompt: "notification ids (comma-separated)", Type: FieldInt64List, Required: true},
			},
			Run: markRead,
		},
		{
			Service: "complaint",
			Action:  "submit",
			Summary: "submit a complaint from the current position",
			Fields: []Field{
				{Name: "description", Aliases: []string{"text"}, Prompt: "description", Type: FieldString, Required: true},
				{Name: "photo", Prompt: "photo path", Type: FieldFile},
				{Name: "lat", Aliases: []string{"latitude"}, Prompt: "latitude", Type: FieldFloat},
				{Name: "lng", Aliases: []string{"longitude", "lon"}, Prompt: "longitude", Type: FieldFloat},
			},
			Run: submitComplaint,
		},
		{Service: "complaint", Action: "draft", Summary: "show the unsent draft", Run: showDraft},
		{
			Service: "complaint",
			Action:  "mine",
			Summary: "list my complaints",
			Fields:  withFields(filterFields, []Field{{Name: "size", Prompt: "size", Type: FieldInt}}),
			Run: listing(func(p Params, filter api.ComplaintFilter, c *api.Client) api.PageFunc[model.Complaint] {
				return func(ctx context.Context, page, size int) (*model.Page[model.Complaint], error) {
					return c.GetMyComplaints(ctx, filter, page, size)
				}
			}),
		},
		{
			Service: "complaint",
			Action:  "search",
			Summary: "search complaints by text",
			Fields: withFields([]Field{
				{Name: "query", Aliases: []string{"q"}, Prompt: "search text", Type: FieldString, Required: true},
			}, filterFields, []Field{{Name: "size", Prompt: "size", Type: FieldInt}}),
			Run: listing(func(p Params, filter api.ComplaintFilter, c *api.Client) api.PageFunc[model.Complaint] {
				text := p.Get("query")
				return func(ctx context.Context, page, size int) (*model.Page[model.Complaint], error) {
					return c.SearchComplaints(ctx, text, filter, page, size)
				}
			}),
		},
		{
			Service: "complaint",
			Action:  "all",
			Summary: "list every complaint (admin)",
			Fields:  withFields(filterFields, []Field{{Name: "size", Prompt: "size", Type: FieldInt}}),
			Run: listing(func(p Params, filter api.ComplaintFilter, c *api.Client) api.PageFunc[model.Complaint] {
				return func(ctx context.Context, page, size int) (*model.Page[model.Complaint], error) {
					return c.GetAllComplaints(ctx, filter, page, size)
				}
			}),
		},
		{
			Service: "complaint",
			Action:  "map",
			Summary: "list complaints for the map, by status and within a radius (km) of lat/lng",
			Fields: []Field{
				{Name: "status", Prompt: "status", Type: FieldString},
				{Name: "lat", Aliases: []string{"latitude"}, Prompt: "latitude", Type: FieldFloat},
				{Name: "lng", Aliases: []string{"lon", "longitude"}, Prompt: "longitude", Type: FieldFloat},
				{Name: "radius", Prompt: "radius (km)", Type: FieldFloat},
				{Name: "size", Prompt: "size", Type: FieldInt},
			},
			Run: listing(func(p Params, filter api.ComplaintFilter, c *api.Client) api.PageFunc[model.Complaint] {
				mf := mapFilter(p, filter.Status)
				return func(ctx context.Context, page, size int) (*model.Page[model.Complaint], error) {
					return c.GetComplaintsMap(ctx, mf, page, size)
				}
			}),
		},
		{Service: "complaint", Action: "more", Summary: "load the next page of the last listing", Run: loadMore},
		{
			Service: "complaint",
			Action:  "detail",
			Summary: "show one complaint (admin)",
			Fields: []Field{
				{Name: "id", Prompt: "complaint id", Type: FieldInt64, Required: true},
			},
			Run: complaintDetail,
		},
		{
			Service: "complaint",
			Action:  "update",
			Summary: "change a complaint's status (admin)",
			Fields: []Field{
				{Name: "id", Prompt: "complaint id", Type: FieldInt64, Required: true},
				{Name: "status", Prompt: "status (PENDING|IN_PROGRESS|RESOLVED|REJECTED)", Type: FieldString, Required: true},
				{Name: "note", Prompt: "note", Type: FieldString},
			},
			Run: updateComplaint,
		},
		{
			Service: "complaint",
			Action:  "bulk-update",
			Summary: "change the status of several complaints (admin)",
			Fields: []Field{
				{Name: "ids", Prompt: "complaint ids (comma-separated)", Type: FieldInt64List, Required: true},
				{Name: "status", Prompt: "status (PENDING|IN_PROGRESS|RESOLVED|REJECTED)", Type: FieldString, Required: true},
				{Name: "note", Prompt: "note", Type: FieldString},
			},
			Run: bulkUpdate,
		},
		{Service: "location", Action: "fetch", Summary: "read the current position into the draft", Run: fetchLocation},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		result[cmd.Key()] = cmd
	}
	return result
}

// Sorted returns the commands ordered by key, for help output.
func Sorted(commands map[string]Command) []Command {
	list := make([]Command, 0, len(commands))
	for _, cmd := range commands {
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key() < list[j].Key() })
	return list
}

func signup(ctx context.Context, env *Env, p Params) (any, error) {
	return env.Client.Signup(ctx, api.SignupRequest{
		Name:            p.Get("name"),
		MobileNumber:    p.Get("mobile"),
		Email:           p.Get("email"),
		Password:        p.Get("password"),
		ConfirmPassword: p.Get("confirm"),
	})
}

func login(ctx context.Context, env *Env, p Params) (any, error) {
	if _, err := env.Client.Login(ctx, api.LoginRequest{MobileNumber: p.Get("mobile"), Password: p.Get("password")}); err != nil {
		return nil, err
	}
	return status(ctx, env, p)
}

func logout(ctx context.Context, env *Env, _ Params) (any, error) {
	if err := env.Client.Logout(ctx); err != nil {
		return nil, err
	}
	return &api.Ack{Message: "signed out"}, nil
}

func refresh(ctx context.Context, env *Env, p Params) (any, error) {
	if _, err := env.Client.RefreshSession(ctx); err != nil {
		return nil, err
	}
	return status(ctx, env, p)
}

type statusView struct {
	Route         session.Route `json:"route"`
	Authenticated bool          `json:"authenticated"`
	ExpiresAt     string        `json:"expiresAt,omitempty"`
}

func status(ctx context.Context, env *Env, _ Params) (any, error) {
	view := statusView{Route: session.Bootstrap(ctx, env.Session)}
	if cred, ok := env.Session.Current(ctx); ok {
		view.Authenticated = true
		if cred.HasExpiry() {
			view.ExpiresAt = cred.ExpiresAt.Format(time.RFC3339)
		}
	}
	return view, nil
}

func requestReset(ctx context.Context, env *Env, p Params) (any, error) {
	return env.Client.RequestPasswordReset(ctx, p.Get("email"))
}

func resetPassword(ctx context.Context, env *Env, p Params) (any, error) {
	return env.Client.ResetPassword(ctx, api.ResetPasswordRequest{
		Email:       p.Get("email"),
		OTP:         p.Get("otp"),
		NewPassword: p.Get("password"),
	})
}

func updateRole(ctx context.Context, env *Env, p Params) (any, error) {
	id, _ := ParseInt64(p.Get("user_id"))
	return env.Client.UpdateRole(ctx, api.UpdateRoleRequest{UserID: id, Role: strings.ToUpper(p.Get("role"))})
}

func profile(ctx context.Context, env *Env, _ Params) (any, error) {
	return env.Client.GetProfile(ctx)
}

func editProfile(ctx context.Context, env *Env, p Params) (any, error) {
	return env.Client.UpdateProfile(ctx, api.UpdateProfileRequest{Name: p.Get("name"), MobileNumber: p.Get("mobile")})
}

func listUsers(ctx context.Context, env *Env, _ Params) (any, error) {
	return env.Client.GetAllUsers(ctx)
}

func unreadNotifications(ctx context.Context, env *Env, p Params) (any, error) {
	return env.Client.GetUnreadNotifications(ctx, p.IntOr("page", 0), p.IntOr("size", env.PageSize))
}

func markRead(ctx context.Context, env *Env, p Params) (any, error) {
	ids, _ := ParseInt64List(p.Get("ids"))
	return env.Client.MarkNotificationsAsRead(ctx, ids)
}

func submitComplaint(ctx context.Context, env *Env, p Params) (any, error) {
	flow := env.Flow
	if p.Has("description") {
		flow.SetDescription(p.Get("description"))
	}
	if p.Has("photo") {
		flow.AttachPhoto(p.Get("photo"))
	}
	if p.Get("lat") != "" && p.Get("lng") != "" {
		lat, _ := ParseFloat(p.Get("lat"))
		lng, _ := ParseFloat(p.Get("lng"))
		flow.Draft.Location = &complaint.Location{Latitude: lat, Longitude: lng}
	} else if flow.Draft.Location == nil && strings.TrimSpace(flow.Draft.Description) != "" {
		if _, err := flow.LocateDevice(ctx); err != nil {
			return nil, err
		}
	}
	return flow.Submit(ctx)
}

type draftView struct {
	Description string              `json:"description"`
	Photo       string              `json:"photo,omitempty"`
	Location    *complaint.Location `json:"location,omitempty"`
}

func showDraft(_ context.Context, env *Env, _ Params) (any, error) {
	d := env.Flow.Draft
	return draftView{Description: d.Description, Photo: d.PhotoRef, Location: d.Location}, nil
}

type listingView struct {
	Page       int               `json:"page"`
	HasMore    bool              `json:"hasMore"`
	Loaded     int               `json:"loaded"`
	Complaints []model.Complaint `json:"complaints"`
}

func newListingView(pager *api.Pager[model.Complaint], items []model.Complaint) listingView {
	if items == nil {
		items = []model.Complaint{}
	}
	return listingView{Page: pager.Page(), HasMore: pager.HasMore(), Loaded: len(pager.Items()), Complaints: items}
}

type pageSource func(p Params, filter api.ComplaintFilter, c *api.Client) api.PageFunc[model.Complaint]

// listing starts a new paginated complaint listing and remembers it for "complaint more".
func listing(source pageSource) Handler {
	return func(ctx context.Context, env *Env, p Params) (any, error) {
		filter, err := complaintFilter(p)
		if err != nil {
			return nil, err
		}
		pager := api.NewPager(p.IntOr("size", env.PageSize), source(p, filter, env.Client))
		items, err := pager.Reload(ctx)
		if err != nil {
			return nil, err
		}
		env.listing = pager
		return newListingView(pager, items), nil
	}
}

func complaintFilter(p Params) (api.ComplaintFilter, error) {
	filter := api.ComplaintFilter{Status: model.ComplaintStatus(strings.ToUpper(p.Get("status")))}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, fmt.Errorf("unknown status %q", p.Get("status"))
	}
	if from := p.Get("from"); from != "" {
		date, err := ParseDate(from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date: %w", err)
		}
		filter.FromDate = date
	}
	return filter, nil
}

// mapFilter reads the optional coordinates. Values were type checked before Run.
func mapFilter(p Params, status model.ComplaintStatus) api.MapFilter {
	mf := api.MapFilter{Status: status}
	for _, item := range []struct {
		key string
		dst **float64
	}{{"lat", &mf.Lat}, {"lng", &mf.Lng}, {"radius", &mf.Radius}} {
		if !p.Has(item.key) {
			continue
		}
		if value, err := ParseFloat(p.Get(item.key)); err == nil {
			*item.dst = &value
		}
	}
	return mf
}

func loadMore(ctx context.Context, env *Env, _ Params) (any, error) {
	if env.listing == nil {
		return nil, fmt.Errorf("no listing to continue, run complaint mine|search|all|map first")
	}
	if !env.listing.HasMore() {
		return &api.Ack{Message: "no more complaints"}, nil
	}
	items, err := env.listing.LoadMore(ctx)
	if err != nil {
		return nil, err
	}
	return newListingView(env.listing, items), nil
}

func complaintDetail(ctx context.Context, env *Env, p Params) (any, error) {
	id, _ := ParseInt64(p.Get("id"))
	return env.Client.GetComplaintDetail(ctx, id)
}

func updateComplaint(ctx context.Context, env *Env, p Params) (any, error) {
	id, _ := ParseInt64(p.Get("id"))
	return env.Client.UpdateComplaint(ctx, id, api.ComplaintChange{
		Status: model.ComplaintStatus(strings.ToUpper(p.Get("status"))),
		Note:   p.Get("note"),
	})
}

func bulkUpdate(ctx context.Context, env *Env, p Params) (any, error) {
	ids, _ := ParseInt64List(p.Get("ids"))
	return env.Client.BulkUpdateComplaints(ctx, api.BulkComplaintChange{
		ComplaintIDs: ids,
		Status:       model.ComplaintStatus(strings.ToUpper(p.Get("status"))),
		Note:         p.Get("note"),
	})
}

func fetchLocation(ctx context.Context, env *Env, _ Params) (any, error) {
	return env.Flow.LocateDevice(ctx)
}
