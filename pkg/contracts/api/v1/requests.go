// Package api contains the HTTP API contracts for shiftcal.
package api

import (
	"strings"

	"shiftcal/pkg/contracts/domain"
)

// ProcessRequest asks for the shifts of one or more employees in a roster
// workbook published at FileURL.
type ProcessRequest struct {
	FileURL      string   `json:"fileUrl" validate:"required,roster_url"`
	NameToSearch string   `json:"name_to_search" validate:"required_without=Names"`
	Names        []string `json:"names,omitempty" validate:"omitempty,dive,max=200"`
	// GoogleToken, when set, also upserts the shifts into the user's
	// primary Google calendar.
	GoogleToken string `json:"google_token,omitempty"`
}

// SearchNames returns NameToSearch followed by Names
func (r ProcessRequest) SearchNames() []string {
	names := make([]string, 0, len(r.Names)+1)
	if s := strings.TrimSpace(r.NameToSearch); s != "" {
		names = append(names, s)
	}
	return append(names, r.Names...)
}

// ShiftsResponse is the JSON body of the shifts endpoint
type ShiftsResponse struct {
	Status  string               `json:"status"`
	Data    []domain.ShiftRecord `json:"data"`
	Count   int                  `json:"count"`
	Skipped []string             `json:"skipped_sheets,omitempty"`
}
