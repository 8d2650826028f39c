// Package repository keeps the stub backend's records in process memory.
package repository

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrMobileExists         = errors.New("mobile number exists")
	ErrEmailExists          = errors.New("email exists")
	ErrComplaintNotFound    = errors.New("complaint not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrOTPNotFound          = errors.New("otp not found")
)

// PageRequest selects a zero-based page.
type PageRequest struct {
	Page int
	Size int
}

// window returns the slice bounds of the page within total items.
func (p PageRequest) window(total int) (int, int) {
	if p.Size <= 0 {
		return 0, total
	}
	start := p.Page * p.Size
	if start > total {
		start = total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return start, end
}
