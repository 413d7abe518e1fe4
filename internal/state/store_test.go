package state_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimschool/internal/database"
	"swimschool/internal/media"
	"swimschool/internal/models"
	"swimschool/internal/repository"
	"swimschool/internal/state"
	"swimschool/internal/validation"
)

var clock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return clock }

type fixture struct {
	repos  *repository.Repositories
	store  *state.Store
	tenant *models.Tenant
	owner  *models.User
}

func openRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())
	return repository.New(db)
}

// setup creates a tenant with an owner and an initialized store
func setup(t *testing.T, opts ...state.Option) *fixture {
	t.Helper()
	repos := openRepos(t)
	ctx := context.Background()

	tenant := &models.Tenant{Name: "Blue Lagoon", Timezone: "UTC", Currency: "USD", CreatedAt: clock, UpdatedAt: clock}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))
	owner := &models.User{TenantID: tenant.ID, Role: models.RoleOwner, FirstName: "Sam", Email: "sam@example.com",
		Status: models.ClientActive, CreatedAt: clock, UpdatedAt: clock}
	require.NoError(t, repos.Users.Create(ctx, owner))

	store := state.New(repos, append([]state.Option{state.WithClock(fixedClock)}, opts...)...)
	require.NoError(t, store.Initialize(ctx))
	return &fixture{repos: repos, store: store, tenant: tenant, owner: owner}
}

func (f *fixture) addClient(t *testing.T, first string) int64 {
	t.Helper()
	id, err := f.store.AddClient(context.Background(), models.Client{
		Person: models.Person{FirstName: first, LastName: "Diver", Email: first + "@example.com"},
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) addServiceType(t *testing.T) int64 {
	t.Helper()
	id, err := f.store.AddServiceType(context.Background(), models.ServiceType{Name: "Private", DurationMinutes: 30, Price: 40})
	require.NoError(t, err)
	return id
}

func (f *fixture) addBooking(t *testing.T, serviceID int64, start time.Time, clients ...int64) int64 {
	t.Helper()
	id, err := f.store.AddBooking(context.Background(), models.Booking{
		ServiceTypeID: serviceID,
		InstructorID:  f.owner.ID,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Price:         40,
	}, clients)
	require.NoError(t, err)
	return id
}

func TestInitializeWithoutTenant(t *testing.T) {
	repos := openRepos(t)
	ctx := context.Background()
	store := state.New(repos, state.WithClock(fixedClock))

	require.NoError(t, store.Initialize(ctx))
	assert.True(t, store.Initialized())
	assert.Nil(t, store.Snapshot().Tenant)
	assert.Empty(t, store.Snapshot().Clients)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"refresh", func() error { return store.RefreshData(ctx) }},
		{"add client", func() error {
			_, err := store.AddClient(ctx, models.Client{Person: models.Person{FirstName: "Mia"}})
			return err
		}},
		{"delete booking", func() error { return store.DeleteBooking(ctx, 1) }},
		{"upsert assessment", func() error {
			_, err := store.UpsertAssessment(ctx, 1, 1, 3, "")
			return err
		}},
		{"check badges", func() error {
			_, err := store.CheckAndAwardBadges(ctx, 1)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), state.ErrNoTenant)
		})
	}
}

func TestInitializeLoadsOwner(t *testing.T) {
	f := setup(t)

	snap := f.store.Snapshot()
	require.NotNil(t, snap.Tenant)
	assert.Equal(t, "Blue Lagoon", snap.Tenant.Name)
	require.NotNil(t, snap.CurrentUser)
	assert.Equal(t, models.RoleOwner, snap.CurrentUser.Role())
	assert.Equal(t, f.owner.ID, snap.CurrentUser.Base().ID)
	assert.Len(t, snap.Staff, 1)
	assert.Equal(t, clock, snap.LoadedAt)
}

func TestUpsertAssessmentNeedsCurrentUser(t *testing.T) {
	repos := openRepos(t)
	ctx := context.Background()
	tenant := &models.Tenant{Name: "No Owner", CreatedAt: clock, UpdatedAt: clock}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))

	store := state.New(repos, state.WithClock(fixedClock))
	require.NoError(t, store.Initialize(ctx))

	_, err := store.UpsertAssessment(ctx, 1, 1, 2, "")
	assert.ErrorIs(t, err, state.ErrNoCurrentUser)
}

func TestAddClientValidation(t *testing.T) {
	f := setup(t)

	_, err := f.store.AddClient(context.Background(), models.Client{Person: models.Person{Email: "not-an-email"}})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Empty(t, f.store.Snapshot().Clients)
}

func TestClientLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id := f.addClient(t, "Mia")
	snap := f.store.Snapshot()
	require.Len(t, snap.Clients, 1)
	assert.Equal(t, models.ClientActive, snap.Clients[0].Status)
	assert.Equal(t, f.tenant.ID, snap.Clients[0].TenantID)

	c, ok := snap.Client(id)
	require.True(t, ok)
	c.SwimLevel = "Level 2"
	c.EmergencyContact = &models.EmergencyContact{Name: "Ana", Phone: "555-0100", Relation: "mother"}
	require.NoError(t, f.store.UpdateClient(ctx, c))

	updated, ok := f.store.Snapshot().Client(id)
	require.True(t, ok)
	assert.Equal(t, "Level 2", updated.SwimLevel)
	require.NotNil(t, updated.EmergencyContact)
	assert.Equal(t, "Ana", updated.EmergencyContact.Name)

	assert.ErrorIs(t, f.store.UpdateClient(ctx, models.Client{Person: models.Person{ID: 999, FirstName: "Ghost"}}), state.ErrNotFound)
	assert.ErrorIs(t, f.store.DeleteClient(ctx, f.owner.ID), state.ErrNotFound)
}

func TestDeleteClientKeepsBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	client := f.addClient(t, "Leo")
	service := f.addServiceType(t)
	f.addBooking(t, service, clock.Add(24*time.Hour), client)

	require.NoError(t, f.store.DeleteClient(ctx, client))

	snap := f.store.Snapshot()
	assert.Empty(t, snap.Clients)
	assert.Len(t, snap.Bookings, 1)
	assert.Len(t, snap.Participants, 1)
}

func TestDeleteBookingRemovesParticipants(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := f.addClient(t, "Mia")
	b := f.addClient(t, "Leo")
	service := f.addServiceType(t)
	booking := f.addBooking(t, service, clock.Add(24*time.Hour), a, b)
	other := f.addBooking(t, service, clock.Add(48*time.Hour), a)

	snap := f.store.Snapshot()
	require.Len(t, snap.Participants, 3)
	assert.Equal(t, models.BookingPending, snap.Bookings[0].Status)
	assert.Equal(t, models.PaymentPending, snap.Bookings[0].PaymentStatus)

	require.NoError(t, f.store.DeleteBooking(ctx, booking))

	snap = f.store.Snapshot()
	require.Len(t, snap.Bookings, 1)
	assert.Equal(t, other, snap.Bookings[0].ID)
	require.Len(t, snap.Participants, 1)
	assert.Equal(t, other, snap.Participants[0].BookingID)

	assert.ErrorIs(t, f.store.DeleteBooking(ctx, booking), state.ErrNotFound)
}

func TestUpsertAssessmentKeepsID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	client := f.addClient(t, "Mia")
	cat := &models.SkillCategory{TenantID: f.tenant.ID, Name: "Freestyle", CreatedAt: clock}
	require.NoError(t, f.repos.Skills.CreateCategory(ctx, cat))
	skill := &models.Skill{TenantID: f.tenant.ID, CategoryID: cat.ID, Name: "Flutter kick", CreatedAt: clock}
	require.NoError(t, f.repos.Skills.CreateSkill(ctx, skill))

	first, err := f.store.UpsertAssessment(ctx, client, skill.ID, 2, "wobbly")
	require.NoError(t, err)
	second, err := f.store.UpsertAssessment(ctx, client, skill.ID, 4, "strong")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	snap := f.store.Snapshot()
	require.Len(t, snap.Assessments, 1)
	assert.Equal(t, 4, snap.Assessments[0].Level)
	assert.Equal(t, "strong", snap.Assessments[0].Notes)
	assert.Equal(t, f.owner.ID, snap.Assessments[0].AssessedBy)

	_, err = f.store.UpsertAssessment(ctx, client, skill.ID, 6, "")
	var verrs validation.Errors
	assert.True(t, errors.As(err, &verrs))
}

func TestCompletingBookingAwardsBadgesOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	client := f.addClient(t, "Mia")
	service := f.addServiceType(t)
	first := &models.Badge{TenantID: f.tenant.ID, Name: "First Splash", RequirementType: models.RequirementLessonsCompleted,
		RequirementValue: 1, XPReward: 50, CreatedAt: clock}
	require.NoError(t, f.repos.Badges.Create(ctx, first))
	five := &models.Badge{TenantID: f.tenant.ID, Name: "High Five", RequirementType: models.RequirementLessonsCompleted,
		RequirementValue: 5, CreatedAt: clock}
	require.NoError(t, f.repos.Badges.Create(ctx, five))

	booking := f.addBooking(t, service, clock.Add(-48*time.Hour), client)
	require.NoError(t, f.store.UpdateBookingStatus(ctx, booking, models.BookingCompleted, models.PaymentPaid))

	snap := f.store.Snapshot()
	require.Len(t, snap.StudentBadges, 1)
	assert.Equal(t, first.ID, snap.StudentBadges[0].BadgeID)
	require.Len(t, snap.Streaks, 1)
	assert.Equal(t, 1, snap.Streaks[0].TotalLessons)
	assert.Equal(t, 25, snap.Streaks[0].TotalXP)
	assert.Equal(t, 1, snap.Streaks[0].CurrentStreak)
	assert.Equal(t, models.AttendanceAttended, snap.Participants[0].AttendanceStatus)
	assert.Equal(t, models.PaymentPaid, snap.Bookings[0].PaymentStatus)

	awarded, err := f.store.CheckAndAwardBadges(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	id, err := f.store.AwardBadge(ctx, client, first.ID)
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Len(t, f.store.Snapshot().StudentBadges, 1)
}

func TestUpdateBookingStatusRejectsUnknownStatus(t *testing.T) {
	f := setup(t)
	client := f.addClient(t, "Mia")
	booking := f.addBooking(t, f.addServiceType(t), clock.Add(time.Hour), client)

	err := f.store.UpdateBookingStatus(context.Background(), booking, "postponed", "")
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "status", verrs[0].Field)
}

func TestGoalProgress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := f.addClient(t, "Mia")

	id, err := f.store.AddGoal(ctx, models.Goal{StudentID: client, Title: "Swim 10 lengths", GoalType: "distance", TargetValue: 10, Unit: "lengths"})
	require.NoError(t, err)

	require.NoError(t, f.store.AddGoalProgress(ctx, id, 4))
	goal := f.store.Snapshot().Goals[0]
	assert.Equal(t, float64(4), goal.CurrentValue)
	assert.Equal(t, models.GoalActive, goal.Status)
	assert.Nil(t, goal.CompletedAt)

	require.NoError(t, f.store.AddGoalProgress(ctx, id, 6))
	goal = f.store.Snapshot().Goals[0]
	assert.Equal(t, models.GoalCompleted, goal.Status)
	require.NotNil(t, goal.CompletedAt)
	assert.True(t, clock.Equal(*goal.CompletedAt))

	require.NoError(t, f.store.UpdateGoalProgress(ctx, id, 3))
	assert.Equal(t, models.GoalCompleted, f.store.Snapshot().Goals[0].Status)

	assert.ErrorIs(t, f.store.AddGoalProgress(ctx, 999, 1), state.ErrNotFound)
}

func TestAddPersonalBestCapturesImprovement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := f.addClient(t, "Mia")

	_, err := f.store.AddPersonalBest(ctx, models.PersonalBest{StudentID: client, EventType: "25m freestyle", TimeSeconds: 40})
	require.NoError(t, err)
	_, err = f.store.AddPersonalBest(ctx, models.PersonalBest{StudentID: client, EventType: "25m freestyle", TimeSeconds: 38.5})
	require.NoError(t, err)

	pbs := f.store.Snapshot().PersonalBests
	require.Len(t, pbs, 2)
	assert.Nil(t, pbs[0].PreviousTime)
	require.NotNil(t, pbs[1].PreviousTime)
	assert.Equal(t, 40.0, *pbs[1].PreviousTime)
	require.NotNil(t, pbs[1].Improvement)
	assert.Equal(t, 1.5, *pbs[1].Improvement)
}

type recordingNotifier struct {
	sent []int64
}

func (n *recordingNotifier) NotifyUser(ctx context.Context, user models.User, _ models.Notification) error {
	n.sent = append(n.sent, user.ID)
	return nil
}

func TestAddNotificationEmailsOptedInUsers(t *testing.T) {
	notifier := &recordingNotifier{}
	f := setup(t, state.WithNotifier(notifier))
	ctx := context.Background()

	optedIn, err := f.store.AddClient(ctx, models.Client{Person: models.Person{FirstName: "Mia", Email: "mia@example.com", NotifyEmail: true}})
	require.NoError(t, err)
	optedOut := f.addClient(t, "Leo")

	for _, userID := range []int64{optedIn, optedOut} {
		_, err := f.store.AddNotification(ctx, models.Notification{UserID: userID, Kind: "lesson", Title: "Lesson tomorrow"})
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{optedIn}, notifier.sent)

	snap := f.store.Snapshot()
	require.Len(t, snap.Notifications, 2)
	require.NoError(t, f.store.MarkNotificationRead(ctx, snap.Notifications[0].ID))
	assert.True(t, f.store.Snapshot().Notifications[0].IsRead)
}

func TestMessagesAndReadState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := f.addClient(t, "Mia")

	id, err := f.store.SendMessage(ctx, models.Message{RecipientID: client, Subject: "Schedule", Body: "See you Tuesday"})
	require.NoError(t, err)

	msg := f.store.Snapshot().Messages[0]
	assert.Equal(t, f.owner.ID, msg.SenderID)
	assert.Nil(t, msg.ReadAt)

	require.NoError(t, f.store.MarkMessageRead(ctx, id))
	msg = f.store.Snapshot().Messages[0]
	require.NotNil(t, msg.ReadAt)
	assert.True(t, clock.Equal(*msg.ReadAt))

	assert.ErrorIs(t, f.store.MarkMessageRead(ctx, 999), state.ErrNotFound)
	assert.ErrorIs(t, f.store.MarkNotificationRead(ctx, 999), state.ErrNotFound)
}

type stubPresigner struct{}

func (stubPresigner) PresignUpload(ctx context.Context, key, contentType string) (*media.Upload, error) {
	return &media.Upload{Key: key, URL: "https://media.example.com/" + key + "?X-Amz-Signature=abc", ExpiresAt: clock.Add(15 * time.Minute)}, nil
}

func TestAddMediaPresigns(t *testing.T) {
	f := setup(t, state.WithPresigner(stubPresigner{}))
	client := f.addClient(t, "Mia")

	_, upload, err := f.store.AddMedia(context.Background(), models.ProgressMedia{StudentID: client, MediaType: "photo"}, "Dive.JPG", "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, upload)

	m := f.store.Snapshot().Media[0]
	assert.Equal(t, upload.Key, m.ObjectKey)
	assert.Equal(t, "https://media.example.com/"+upload.Key, m.URL)
	assert.Contains(t, m.ObjectKey, ".jpg")
}

func TestAddClientCreditUsesPackage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := f.addClient(t, "Mia")

	pkg, err := f.store.AddCreditPackage(ctx, models.CreditPackage{Name: "Ten pack", Credits: 10, Price: 350, ValidDays: 90, Active: true})
	require.NoError(t, err)
	_, err = f.store.AddClientCredit(ctx, client, pkg)
	require.NoError(t, err)

	credit := f.store.Snapshot().ClientCredits[0]
	assert.Equal(t, 10, credit.Remaining)
	require.NotNil(t, credit.ExpiresAt)
	assert.True(t, clock.Add(90*24*time.Hour).Equal(*credit.ExpiresAt))

	_, err = f.store.AddClientCredit(ctx, client, 999)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestAddInvoiceTotals(t *testing.T) {
	f := setup(t)
	client := f.addClient(t, "Mia")

	_, err := f.store.AddInvoice(context.Background(), models.Invoice{ClientID: client, Number: "INV-001"}, []models.InvoiceItem{
		{Description: "Private lesson", Quantity: 3, UnitPrice: 40},
		{Description: "Goggles", Quantity: 1, UnitPrice: 12.5},
	})
	require.NoError(t, err)

	snap := f.store.Snapshot()
	require.Len(t, snap.Invoices, 1)
	assert.Equal(t, 132.5, snap.Invoices[0].Total)
	assert.Equal(t, models.InvoiceDraft, snap.Invoices[0].Status)
	require.Len(t, snap.InvoiceItems, 2)
	assert.Equal(t, 120.0, snap.InvoiceItems[0].Amount)
}

func TestMutationsWriteAuditLog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	client := f.addClient(t, "Mia")
	require.NoError(t, f.store.DeleteClient(ctx, client))

	logs, err := f.repos.AuditLogs.ListByEntity(ctx, "client", client)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditCreate, logs[0].Action)
	assert.Equal(t, models.AuditDelete, logs[1].Action)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, f.owner.ID, *logs[0].UserID)
}

func TestSubscribeAndTeardown(t *testing.T) {
	f := setup(t)

	var calls int
	var last *state.Snapshot
	cancel := f.store.Subscribe(func(s *state.Snapshot) {
		calls++
		last = s
	})

	f.addClient(t, "Mia")
	assert.Equal(t, 1, calls)
	assert.Same(t, f.store.Snapshot(), last)

	cancel()
	f.addClient(t, "Leo")
	assert.Equal(t, 1, calls)

	f.store.Teardown()
	assert.False(t, f.store.Initialized())
	assert.Nil(t, f.store.Snapshot().Tenant)
	_, err := f.store.AddClient(context.Background(), models.Client{Person: models.Person{FirstName: "Zoe"}})
	assert.ErrorIs(t, err, state.ErrNoTenant)
}

func TestSetCurrentUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := f.addClient(t, "Mia")

	require.NoError(t, f.store.SetCurrentUser(ctx, client))
	cur := f.store.Snapshot().CurrentUser
	require.NotNil(t, cur)
	assert.Equal(t, models.RoleClient, cur.Role())

	assert.ErrorIs(t, f.store.SetCurrentUser(ctx, 999), state.ErrNotFound)
}
