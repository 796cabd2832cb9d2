// Package capacity decides whether a signup may join a guest list.
//
// The decision is pure: callers load the list's state (ideally under a row
// lock) and ask Evaluate before writing anything.
package capacity

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when the organizer has closed the list.
	ErrClosed = errors.New("guest list is closed")

	// ErrInvalidQuantity is returned for a party size below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrDuplicateEmail is returned when the email is already on the list.
	ErrDuplicateEmail = errors.New("email is already on the guest list")

	// ErrFull is returned when no spots remain.
	ErrFull = errors.New("guest list is full")
)

// MaxPerSignupError is returned when a party exceeds the per-signup limit.
type MaxPerSignupError struct {
	Max int
}

func (e *MaxPerSignupError) Error() string {
	return fmt.Sprintf("maximum %d guests per signup", e.Max)
}

// RemainingError is returned when a party is larger than the spots left.
type RemainingError struct {
	Remaining int
}

func (e *RemainingError) Error() string {
	if e.Remaining == 1 {
		return "only 1 spot remaining"
	}
	return fmt.Sprintf("only %d spots remaining", e.Remaining)
}

// CapBelowTotalError is returned when an edit would set the cap below the
// number of guests already signed up.
type CapBelowTotalError struct {
	Total int
}

func (e *CapBelowTotalError) Error() string {
	return fmt.Sprintf("cannot set guest cap below current guest count (%d)", e.Total)
}

// State is everything the admission decision depends on.
type State struct {
	IsClosed     bool
	GuestCap     *int // nil means unlimited
	MaxPerSignup int
	Total        int  // sum of existing guest quantities
	EmailTaken   bool // normalized email already present on this list
}

// Evaluate returns nil if a party of quantity may join, otherwise the first
// matching rejection.
func Evaluate(s State, quantity int) error {
	if s.IsClosed {
		return ErrClosed
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if s.EmailTaken {
		return ErrDuplicateEmail
	}
	if quantity > s.MaxPerSignup {
		return &MaxPerSignupError{Max: s.MaxPerSignup}
	}
	if s.GuestCap == nil {
		return nil
	}
	remaining := *s.GuestCap - s.Total
	if remaining <= 0 {
		return ErrFull
	}
	if quantity > remaining {
		return &RemainingError{Remaining: remaining}
	}
	return nil
}

// Remaining returns the spots left, or nil when the list is unlimited.
// It never goes below zero even if an admin edit overfilled the list.
func Remaining(guestCap *int, total int) *int {
	if guestCap == nil {
		return nil
	}
	r := max(*guestCap-total, 0)
	return &r
}

// EffectiveMax bounds the party-size input on the signup form.
func EffectiveMax(maxPerSignup int, guestCap *int, total int) int {
	r := Remaining(guestCap, total)
	if r == nil {
		return maxPerSignup
	}
	return min(maxPerSignup, *r)
}

// CheckCap validates a new cap against the current total. A nil cap removes
// the limit and is always allowed.
func CheckCap(newCap *int, total int) error {
	if newCap != nil && *newCap < total {
		return &CapBelowTotalError{Total: total}
	}
	return nil
}
