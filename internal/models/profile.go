package models

// Profile is a farmer record in the users collection. Only the display
// name participates in claim enrichment; the rest renders on the detail view.
type Profile struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Region string `db:"region" json:"region,omitempty"`
	Phone  string `db:"phone" json:"phone,omitempty"`
}
