package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMember(t *testing.T) {
	parentID := int64(9)
	dob := time.Date(2015, 4, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		user     User
		wantRole Role
		check    func(t *testing.T, m Member)
	}{
		{
			name:     "owner",
			user:     User{ID: 1, Role: RoleOwner, FirstName: "Sam", PasswordHash: "hash"},
			wantRole: RoleOwner,
			check: func(t *testing.T, m Member) {
				owner, ok := m.(Owner)
				require.True(t, ok)
				assert.False(t, owner.Admin)
				assert.Equal(t, "hash", owner.PasswordHash)
			},
		},
		{
			name:     "admin maps to owner",
			user:     User{ID: 2, Role: RoleAdmin, FirstName: "Alex"},
			wantRole: RoleAdmin,
			check: func(t *testing.T, m Member) {
				owner, ok := m.(Owner)
				require.True(t, ok)
				assert.True(t, owner.Admin)
			},
		},
		{
			name:     "instructor",
			user:     User{ID: 3, Role: RoleInstructor, FirstName: "Jo", Notes: "lifeguard"},
			wantRole: RoleInstructor,
			check: func(t *testing.T, m Member) {
				assert.Equal(t, "lifeguard", m.(Instructor).Notes)
			},
		},
		{
			name: "client with emergency contact",
			user: User{
				ID: 4, Role: RoleClient, FirstName: "Mia", LastName: "Chen", Status: ClientActive,
				SwimLevel: "beginner", DateOfBirth: &dob, ParentID: &parentID,
				EmergencyContactName: "Li Chen", EmergencyContactPhone: "555-0100", EmergencyContactRelation: "mother",
			},
			wantRole: RoleClient,
			check: func(t *testing.T, m Member) {
				client := m.(Client)
				require.NotNil(t, client.EmergencyContact)
				assert.Equal(t, "Li Chen", client.EmergencyContact.Name)
				assert.Equal(t, &parentID, client.ParentID)
				assert.Equal(t, "Mia Chen", client.FullName())
			},
		},
		{
			name:     "client without emergency contact",
			user:     User{ID: 5, Role: RoleClient, FirstName: "Leo"},
			wantRole: RoleClient,
			check: func(t *testing.T, m Member) {
				assert.Nil(t, m.(Client).EmergencyContact)
			},
		},
		{
			name:     "parent",
			user:     User{ID: 6, Role: RoleParent, FirstName: "Pat"},
			wantRole: RoleParent,
			check: func(t *testing.T, m Member) {
				_, ok := m.(Parent)
				assert.True(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.user.Member()
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, m.Role())
			assert.Equal(t, tt.user.ID, m.Base().ID)
			tt.check(t, m)

			back := m.User()
			assert.Equal(t, tt.user.Role, back.Role)
			assert.Equal(t, tt.user.FirstName, back.FirstName)
		})
	}
}

func TestUserMemberUnknownRole(t *testing.T) {
	_, err := User{ID: 7, Role: "coach"}.Member()
	assert.Error(t, err)
}

func TestClientIsActive(t *testing.T) {
	assert.True(t, Client{Status: ClientActive}.IsActive())
	assert.True(t, Client{}.IsActive())
	assert.False(t, Client{Status: ClientPaused}.IsActive())
}

func TestGoalReached(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		want    bool
	}{
		{name: "below target", current: 9, target: 10, want: false},
		{name: "at target", current: 10, target: 10, want: true},
		{name: "above target", current: 12, target: 10, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{CurrentValue: tt.current, TargetValue: tt.target}
			if got := g.Reached(); got != tt.want {
				t.Errorf("Goal.Reached() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTenantLocation(t *testing.T) {
	var nilTenant *Tenant
	assert.Equal(t, time.Local, nilTenant.Location())
	assert.Equal(t, time.Local, (&Tenant{Timezone: "Not/AZone"}).Location())
	assert.Equal(t, "UTC", (&Tenant{Timezone: "UTC"}).Location().String())
}
