package models

import (
	"fmt"
	"strings"
	"time"
)

// Role tags a row in the users table
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleClient     Role = "client"
	RoleParent     Role = "parent"
)

// Client statuses
const (
	ClientActive   = "active"
	ClientInactive = "inactive"
	ClientPaused   = "paused"
)

// User is the stored shape of every person record. Code outside the
// repository layer works with Member values instead.
type User struct {
	ID                       int64      `db:"id" json:"id"`
	TenantID                 int64      `db:"tenant_id" json:"tenantId"`
	Role                     Role       `db:"role" json:"role"`
	FirstName                string     `db:"first_name" json:"firstName"`
	LastName                 string     `db:"last_name" json:"lastName"`
	Email                    string     `db:"email" json:"email"`
	Phone                    string     `db:"phone" json:"phone"`
	Status                   string     `db:"status" json:"status"`
	PasswordHash             string     `db:"password_hash" json:"-"`
	NotifyEmail              bool       `db:"notify_email" json:"notifyEmail"`
	NotifySMS                bool       `db:"notify_sms" json:"notifySms"`
	EmergencyContactName     string     `db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactPhone    string     `db:"emergency_contact_phone" json:"emergencyContactPhone"`
	EmergencyContactRelation string     `db:"emergency_contact_relation" json:"emergencyContactRelation"`
	DateOfBirth              *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	SwimLevel                string     `db:"swim_level" json:"swimLevel"`
	ParentID                 *int64     `db:"parent_id" json:"parentId,omitempty"`
	Notes                    string     `db:"notes" json:"notes"`
	CreatedAt                time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updatedAt"`
}

// Person holds the fields every role shares
type Person struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenantId"`
	FirstName   string    `json:"firstName" validate:"required,max=100"`
	LastName    string    `json:"lastName" validate:"max=100"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone" validate:"max=40"`
	NotifyEmail bool      `json:"notifyEmail"`
	NotifySMS   bool      `json:"notifySms"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FullName joins first and last name
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// EmergencyContact is optional on a client
type EmergencyContact struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Relation string `json:"relation"`
}

// Member is one of Owner, Instructor, Client or Parent
type Member interface {
	Role() Role
	Base() Person
	User() User
}

// Owner runs the academy. Admin accounts are owners with Admin set.
type Owner struct {
	Person
	Admin        bool   `json:"admin"`
	PasswordHash string `json:"-"`
}

func (o Owner) Role() Role {
	if o.Admin {
		return RoleAdmin
	}
	return RoleOwner
}

func (o Owner) Base() Person { return o.Person }

func (o Owner) User() User {
	u := userFromPerson(o.Person, o.Role())
	u.PasswordHash = o.PasswordHash
	return u
}

// Instructor teaches lessons
type Instructor struct {
	Person
	Notes string `json:"notes"`
}

func (i Instructor) Role() Role   { return RoleInstructor }
func (i Instructor) Base() Person { return i.Person }

func (i Instructor) User() User {
	u := userFromPerson(i.Person, RoleInstructor)
	u.Notes = i.Notes
	return u
}

// Client is a student enrolled at the academy
type Client struct {
	Person
	Status           string            `json:"status" validate:"omitempty,oneof=active inactive paused"`
	SwimLevel        string            `json:"swimLevel"`
	DateOfBirth      *time.Time        `json:"dateOfBirth,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	ParentID         *int64            `json:"parentId,omitempty"`
	Notes            string            `json:"notes"`
}

func (c Client) Role() Role   { return RoleClient }
func (c Client) Base() Person { return c.Person }

func (c Client) User() User {
	u := userFromPerson(c.Person, RoleClient)
	u.Status = c.Status
	u.SwimLevel = c.SwimLevel
	u.DateOfBirth = c.DateOfBirth
	u.ParentID = c.ParentID
	u.Notes = c.Notes
	if c.EmergencyContact != nil {
		u.EmergencyContactName = c.EmergencyContact.Name
		u.EmergencyContactPhone = c.EmergencyContact.Phone
		u.EmergencyContactRelation = c.EmergencyContact.Relation
	}
	return u
}

// IsActive reports whether the client counts toward active rosters
func (c Client) IsActive() bool {
	return c.Status == "" || c.Status == ClientActive
}

// Parent is a guardian linked to one or more clients through Client.ParentID
type Parent struct {
	Person
}

func (p Parent) Role() Role   { return RoleParent }
func (p Parent) Base() Person { return p.Person }
func (p Parent) User() User   { return userFromPerson(p.Person, RoleParent) }

func userFromPerson(p Person, role Role) User {
	return User{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Role:        role,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		Status:      ClientActive,
		NotifyEmail: p.NotifyEmail,
		NotifySMS:   p.NotifySMS,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Person extracts the shared fields of a stored user
func (u User) Person() Person {
	return Person{
		ID:          u.ID,
		TenantID:    u.TenantID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		NotifyEmail: u.NotifyEmail,
		NotifySMS:   u.NotifySMS,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Member converts a stored user into its role variant
func (u User) Member() (Member, error) {
	switch u.Role {
	case RoleOwner, RoleAdmin:
		return Owner{Person: u.Person(), Admin: u.Role == RoleAdmin, PasswordHash: u.PasswordHash}, nil
	case RoleInstructor:
		return Instructor{Person: u.Person(), Notes: u.Notes}, nil
	case RoleClient:
		c := Client{
			Person:      u.Person(),
			Status:      u.Status,
			SwimLevel:   u.SwimLevel,
			DateOfBirth: u.DateOfBirth,
			ParentID:    u.ParentID,
			Notes:       u.Notes,
		}
		if u.EmergencyContactName != "" || u.EmergencyContactPhone != "" {
			c.EmergencyContact = &EmergencyContact{
				Name:     u.EmergencyContactName,
				Phone:    u.EmergencyContactPhone,
				Relation: u.EmergencyContactRelation,
			}
		}
		return c, nil
	case RoleParent:
		return Parent{Person: u.Person()}, nil
	default:
		return nil, fmt.Errorf("unknown role %q for user %d", u.Role, u.ID)
	}
}

// IsStaff reports whether the role can teach or manage
func (r Role) IsStaff() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleInstructor
}
