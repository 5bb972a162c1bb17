package model

import "time"

// School represents a row in the `schools` table.  The service exposes a
// read-only public directory of academies; registration and management of
// schools happen elsewhere.
type School struct {
	ID          string
	Name        string
	Description *string
	City        string
	Address     *string
	Sports      string // comma-separated sport names
	Rating      float64
	Verified    bool
	CreatedAt   time.Time
}
