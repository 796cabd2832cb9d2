package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OptInt is an integer field that may be absent, explicitly null, a JSON
// number or a numeric string. Form-backed clients send all three.
type OptInt struct {
	Set   bool  // key was present in the payload
	Null  bool  // explicit null or empty string
	Value int   // parsed value when Set && !Null && Err == nil
	Err   error // present but not an integer
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptInt) UnmarshalJSON(b []byte) error {
	*o = OptInt{Set: true}
	s := strings.TrimSpace(string(b))
	if s == "null" {
		o.Null = true
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			o.Null = true
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		o.Value = int(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		o.Value = int(f)
		return nil
	}
	o.Err = fmt.Errorf("%q is not an integer", s)
	return nil
}

// Missing reports whether no usable value was supplied.
func (o OptInt) Missing() bool {
	return !o.Set || o.Null
}

// IntOf returns an OptInt holding n.
func IntOf(n int) OptInt {
	return OptInt{Set: true, Value: n}
}

// CreateGigRequest is the payload for creating a single guest list.
type CreateGigRequest struct {
	Date         string  `json:"date"`
	DJName       string  `json:"djName"`
	VenueName    *string `json:"venueName"`
	GuestCap     OptInt  `json:"guestCap"`
	MaxPerSignup OptInt  `json:"maxPerSignup"`
}

// BatchCreateRequest is the payload for creating many guest lists at once.
type BatchCreateRequest struct {
	Gigs []CreateGigRequest `json:"gigs"`
}

// BatchCreateResponse is returned after a successful batch creation.
type BatchCreateResponse struct {
	Success bool  `json:"success"`
	Count   int   `json:"count"`
	Gigs    []Gig `json:"gigs"`
}

// UpdateGigRequest is a partial update of a guest list. Absent fields are
// left untouched; "guestCap": null removes the cap.
type UpdateGigRequest struct {
	Date         *string `json:"date"`
	DJName       *string `json:"djName"`
	VenueName    *string `json:"venueName"`
	GuestCap     OptInt  `json:"guestCap"`
	MaxPerSignup OptInt  `json:"maxPerSignup"`
	IsClosed     *bool   `json:"isClosed"`
}

// GigPatch is a validated UpdateGigRequest.
type GigPatch struct {
	Date         *Date
	DJName       *string
	VenueName    *string // empty string clears the venue
	SetGuestCap  bool
	GuestCap     *int
	MaxPerSignup *int
	IsClosed     *bool
}

// SignupRequest is the public payload for joining a guest list.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Quantity OptInt `json:"quantity"`
}

// UpdateGuestRequest is an admin edit of a single guest.
type UpdateGuestRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Quantity OptInt  `json:"quantity"`
}

// GuestPatch is a validated UpdateGuestRequest.
type GuestPatch struct {
	Name     *string
	Email    *string
	Quantity *int
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest starts the password reset flow.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ConfirmResetRequest completes the password reset flow.
type ConfirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
