package command

import (
	"testing"

	"campuscomplaint/internal/model"
)

func TestRegistryCoversEveryOperation(t *testing.T) {
	commands := Registry()
	want := []string{
		"auth signup", "auth login", "auth logout", "auth refresh", "auth status",
		"auth request-reset", "auth reset-password", "auth update-role",
		"user profile", "user edit", "user list",
		"notification unread", "notification mark-read",
		"complaint submit", "complaint draft", "complaint mine", "complaint search", "complaint all",
		"complaint map", "complaint more", "complaint detail", "complaint update", "complaint bulk-update",
		"location fetch",
	}
	for _, key := range want {
		cmd, ok := commands[key]
		if !ok {
			t.Errorf("missing command %q", key)
			continue
		}
		if cmd.Run == nil {
			t.Errorf("command %q has no handler", key)
		}
	}
	if len(commands) != len(want) {
		t.Errorf("registry has %d commands, want %d", len(commands), len(want))
	}
}

func TestCanonicalizeAliases(t *testing.T) {
	cmd := Registry()["auth login"]
	params := Params{}
	params.Set("mobileNumber", "9876543210")
	params.Canonicalize(cmd.Fields)

	if params.Get("mobile") != "9876543210" {
		t.Fatalf("alias not mapped: %v", params)
	}
	if params.Has("mobilenumber") {
		t.Fatalf("alias key should be removed")
	}
}

func TestCheckValidatesTypes(t *testing.T) {
	fields := []Field{
		{Name: "id", Type: FieldInt64},
		{Name: "ids", Type: FieldInt64List},
		{Name: "lat", Type: FieldFloat},
		{Name: "from", Type: FieldDate},
	}
	valid := Params{"id": "7", "ids": "1, 2,3", "lat": "12.9", "from": "2026-01-31"}
	if err := valid.Check(fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []Params{
		{"id": "seven"},
		{"ids": "1,x"},
		{"lat": "north"},
		{"from": "31/01/2026"},
	}
	for _, params := range tests {
		if err := params.Check(fields); err == nil {
			t.Errorf("expected error for %v", params)
		}
	}
}

func TestParseInt64ListSkipsBlanks(t *testing.T) {
	ids, err := ParseInt64List("4, ,5,")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 5 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestIntOrFallsBack(t *testing.T) {
	params := Params{"size": "x"}
	if got := params.IntOr("size", 10); got != 10 {
		t.Fatalf("IntOr = %d, want 10", got)
	}
	params.Set("size", "25")
	if got := params.IntOr("size", 10); got != 25 {
		t.Fatalf("IntOr = %d, want 25", got)
	}
}

func TestMapFilterReadsOptionalCoordinates(t *testing.T) {
	cmd := Registry()["complaint map"]
	params := Params{"latitude": "12.97", "lon": "77.59"}
	params.Canonicalize(cmd.Fields)
	if err := params.Check(cmd.Fields); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	mf := mapFilter(params, model.StatusPending)
	if mf.Status != model.StatusPending || mf.Lat == nil || *mf.Lat != 12.97 || mf.Lng == nil || *mf.Lng != 77.59 {
		t.Fatalf("unexpected filter: %+v", mf)
	}
	if mf.Radius != nil {
		t.Fatalf("radius should stay unset, got %v", *mf.Radius)
	}

	bad := Params{"radius": "wide"}
	if err := bad.Check(cmd.Fields); err == nil {
		t.Fatalf("expected invalid radius error")
	}
}
