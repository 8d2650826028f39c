package api

import (
	"context"
	"errors"
	"testing"

	"campuscomplaint/internal/model"
)

type pageCall struct{ page, size int }

func fakePages(pages [][]int, calls *[]pageCall) PageFunc[int] {
	return func(_ context.Context, page, size int) (*model.Page[int], error) {
		*calls = append(*calls, pageCall{page, size})
		if page >= len(pages) {
			return nil, errors.New("page out of range")
		}
		return &model.Page[int]{Content: pages[page], Number: page, Size: size, Last: page == len(pages)-1}, nil
	}
}

func TestPagerRequestsNextPageWhileNotLast(t *testing.T) {
	var calls []pageCall
	pager := NewPager(10, fakePages([][]int{{1, 2}, {3, 4}, {5}}, &calls))
	ctx := context.Background()

	if _, err := pager.Reload(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, err := pager.LoadMore(ctx); err != nil {
		t.Fatalf("load more failed: %v", err)
	}
	if calls[len(calls)-1] != (pageCall{1, 10}) {
		t.Fatalf("expected page 1 request, got %+v", calls[len(calls)-1])
	}
	if _, err := pager.LoadMore(ctx); err != nil {
		t.Fatalf("load more failed: %v", err)
	}
	if pager.HasMore() {
		t.Fatalf("expected no more pages")
	}

	before := len(calls)
	got, err := pager.LoadMore(ctx)
	if err != nil || got != nil {
		t.Fatalf("expected no-op after last page, got %v %v", got, err)
	}
	if len(calls) != before {
		t.Fatalf("expected no request after last page")
	}
	if items := pager.Items(); len(items) != 5 || items[4] != 5 {
		t.Fatalf("items = %v", items)
	}
}

func TestPagerFirstLoadMoreReloads(t *testing.T) {
	var calls []pageCall
	pager := NewPager(20, fakePages([][]int{{1}}, &calls))
	if _, err := pager.LoadMore(context.Background()); err != nil {
		t.Fatalf("load more failed: %v", err)
	}
	if len(calls) != 1 || calls[0] != (pageCall{0, 20}) {
		t.Fatalf("calls = %+v", calls)
	}
	if pager.HasMore() {
		t.Fatalf("single last page should leave nothing to load")
	}
}

func TestPagerKeepsStateOnError(t *testing.T) {
	var calls []pageCall
	pager := NewPager(10, fakePages([][]int{{1}, {2}}, &calls))
	ctx := context.Background()
	_, _ = pager.Reload(ctx)
	pager.fetch = func(context.Context, int, int) (*model.Page[int], error) {
		return nil, errors.New("offline")
	}
	if _, err := pager.LoadMore(ctx); err == nil {
		t.Fatalf("expected error")
	}
	if pager.Page() != 0 || !pager.HasMore() {
		t.Fatalf("failed load must not advance the page")
	}
}

func TestIsAuthRoute(t *testing.T) {
	for _, path := range []string{PathSignup, PathLogin, PathRequestPasswordReset, PathResetPassword + "?x=1"} {
		if !IsAuthRoute(path) {
			t.Fatalf("%s should be an auth route", path)
		}
	}
	for _, path := range []string{PathRefresh, PathProfile, PathUpdateRole, ComplaintPath(3)} {
		if IsAuthRoute(path) {
			t.Fatalf("%s should not be an auth route", path)
		}
	}
}
