package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimschool/internal/models"
	"swimschool/internal/repository"
	"swimschool/internal/security"
	"swimschool/internal/state"
)

func TestBackupRoundTrip(t *testing.T) {
	db, result := seededDB(t)
	ctx := context.Background()

	store := state.New(repository.New(db), state.WithClock(func() time.Time { return testNow }))
	require.NoError(t, store.Initialize(ctx))

	student := result.Clients[0]
	_, err := store.AddGoal(ctx, models.Goal{StudentID: student, Title: "Swim 10 lengths", GoalType: "distance", TargetValue: 10, Unit: "lengths"})
	require.NoError(t, err)
	_, err = store.AddPersonalBest(ctx, models.PersonalBest{StudentID: student, EventType: "25m freestyle", TimeSeconds: 31.2})
	require.NoError(t, err)

	booking := store.Snapshot().Bookings[0].ID
	_, err = store.AddInvoice(ctx, models.Invoice{ClientID: student, Number: "INV-100"},
		[]models.InvoiceItem{{Description: "Lesson", Quantity: 1, UnitPrice: 45, BookingID: &booking}})
	require.NoError(t, err)

	svc := NewBackupService(db)
	svc.now = func() time.Time { return testNow }

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, result.TenantID, &buf))
	assert.Contains(t, buf.String(), `"passwordHash"`)

	before, err := svc.Collect(ctx, result.TenantID)
	require.NoError(t, err)

	newTenant, err := svc.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NotEqual(t, result.TenantID, newTenant)

	after, err := svc.Collect(ctx, newTenant)
	require.NoError(t, err)

	assert.Equal(t, before.Tenant.Name, after.Tenant.Name)
	assert.Len(t, after.Users, len(before.Users))
	assert.Len(t, after.Bookings, len(before.Bookings))
	assert.Len(t, after.Participants, len(before.Participants))
	assert.Len(t, after.Skills, len(before.Skills))
	assert.Len(t, after.Assessments, len(before.Assessments))
	assert.Len(t, after.StudentBadges, len(before.StudentBadges))
	assert.Len(t, after.Goals, 1)
	assert.Len(t, after.PersonalBests, 1)
	assert.Len(t, after.InvoiceItems, 1)
	assert.Len(t, after.AuditLogs, len(before.AuditLogs))

	users := make(map[int64]models.User)
	for _, u := range after.Users {
		users[u.ID] = u.User
		assert.Equal(t, newTenant, u.TenantID)
	}
	bookings := make(map[int64]bool)
	for _, b := range after.Bookings {
		bookings[b.ID] = true
		assert.Contains(t, users, b.InstructorID)
	}
	for _, p := range after.Participants {
		assert.Contains(t, users, p.ClientID)
		assert.True(t, bookings[p.BookingID])
	}
	require.NotNil(t, after.InvoiceItems[0].BookingID)
	assert.True(t, bookings[*after.InvoiceItems[0].BookingID])
	assert.Equal(t, "Swim 10 lengths", after.Goals[0].Title)
	assert.Contains(t, users, after.Goals[0].StudentID)

	var owner *UserBackup
	for i := range after.Users {
		if after.Users[i].Role == models.RoleOwner {
			owner = &after.Users[i]
		}
	}
	require.NotNil(t, owner)
	assert.True(t, security.CheckPassword("demo1234", owner.PasswordHash))
}

func TestImportRejectsOtherVersions(t *testing.T) {
	db := openDB(t)
	svc := NewBackupService(db)

	tests := []struct {
		name  string
		input string
	}{
		{name: "future version", input: `{"version": "2", "tenant": {"name": "X"}}`},
		{name: "missing version", input: `{"tenant": {"name": "X"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrUnsupportedBackup)
		})
	}

	_, err := svc.Import(context.Background(), strings.NewReader("{not json"))
	assert.Error(t, err)
}
