package models

import "time"

// Tenant represents one academy account. Every other record is scoped by its ID.
type Tenant struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name" validate:"required,max=200"`
	PrimaryColor   string    `db:"primary_color" json:"primaryColor"`
	SecondaryColor string    `db:"secondary_color" json:"secondaryColor"`
	Timezone       string    `db:"timezone" json:"timezone"`
	Currency       string    `db:"currency" json:"currency" validate:"omitempty,len=3"`
	CoachingType   string    `db:"coaching_type" json:"coachingType"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Location resolves the tenant timezone, falling back to the process local zone
func (t *Tenant) Location() *time.Location {
	if t == nil || t.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
