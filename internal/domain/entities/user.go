package entities

import (
	"encoding/json"
	"strings"
)

// User represents a Gong user
type User struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Active       bool   `json:"active"`
}

// UnmarshalJSON defaults Active to true when the field is absent from the
// API response.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		Active *bool `json:"active"`
		*alias
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.Active = aux.Active == nil || *aux.Active
	return nil
}

// FullName returns "First Last", falling back to the email address when no
// name is set.
func (u *User) FullName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, u.LastName)
	}
	if len(parts) == 0 {
		return u.EmailAddress
	}
	return strings.Join(parts, " ")
}
