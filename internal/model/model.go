// Package model defines the core domain types for the guest list service.
package model

import "time"

// DefaultMaxPerSignup is the party-size limit applied when none is given.
const DefaultMaxPerSignup = 10

// AdminID is the identity of the singleton admin row.
const AdminID = "admin"

// Gig is one event's guest list, identified publicly by its slug.
type Gig struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	Date           Date       `json:"date"`
	DJName         string     `json:"djName"`
	VenueName      *string    `json:"venueName"`
	GuestCap       *int       `json:"guestCap"`
	MaxPerSignup   int        `json:"maxPerSignup"`
	IsClosed       bool       `json:"isClosed"`
	LastExportedAt *time.Time `json:"lastExportedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Guest is one signup entry (one or more attendees) against a gig.
type Guest struct {
	ID        string    `json:"id"`
	GigID     string    `json:"gigId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminConfig holds the organizer's credentials.
type AdminConfig struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// GigSummary is a gig annotated with guest counts, as shown on the dashboard.
type GigSummary struct {
	Gig
	TotalGuests   int `json:"totalGuests"`
	SignUpCount   int `json:"signUpCount"`
	NewGuestCount int `json:"newGuestCount"`
}

// GigDetail is a gig with its full guest list, ordered by signup time.
type GigDetail struct {
	Gig
	Guests      []Guest `json:"guests"`
	TotalGuests int     `json:"totalGuests"`
	SignUpCount int     `json:"signUpCount"`
}

// PublicGig is what an attendee sees on the sign-up page.
type PublicGig struct {
	Slug         string  `json:"slug"`
	Date         Date    `json:"date"`
	DJName       string  `json:"djName"`
	VenueName    *string `json:"venueName"`
	IsClosed     bool    `json:"isClosed"`
	GuestCap     *int    `json:"guestCap"`
	MaxPerSignup int     `json:"maxPerSignup"`
	TotalGuests  int     `json:"totalGuests"`
	Remaining    *int    `json:"remaining"`
	EffectiveMax int     `json:"effectiveMax"`
	IsFull       bool    `json:"isFull"`
}

// TotalQuantity sums the party sizes of guests.
func TotalQuantity(guests []Guest) int {
	total := 0
	for _, g := range guests {
		total += g.Quantity
	}
	return total
}

// CountSince returns how many guests signed up strictly after t.
// A nil watermark means nothing has been exported yet and yields zero.
func CountSince(guests []Guest, t *time.Time) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, g := range guests {
		if g.CreatedAt.After(*t) {
			n++
		}
	}
	return n
}
