package repository

import (
	"context"
	"database/sql"
	"errors"

	"swimschool/internal/database"
)

// Repositories bundles every collection of the data store behind one handle
type Repositories struct {
	db database.DBTX

	Tenants           *TenantRepository
	Users             *UserRepository
	Bookings          *BookingRepository
	Participants      *ParticipantRepository
	ServiceTypes      *ServiceTypeRepository
	Resources         *ResourceRepository
	RecurringPatterns *RecurringPatternRepository
	Skills            *SkillRepository
	Assessments       *AssessmentRepository
	Goals             *GoalRepository
	Badges            *BadgeRepository
	Streaks           *StreakRepository
	PersonalBests     *PersonalBestRepository
	Media             *MediaRepository
	Feedback          *FeedbackRepository
	LessonNotes       *LessonNoteRepository
	Notifications     *NotificationRepository
	Messages          *MessageRepository
	Invoices          *InvoiceRepository
	Credits           *CreditRepository
	Expenses          *ExpenseRepository
	AuditLogs         *AuditLogRepository
}

// New creates all repositories on top of db, which may be a *database.DB or a *database.Tx
func New(db database.DBTX) *Repositories {
	participants := NewParticipantRepository(db)
	return &Repositories{
		db:                db,
		Tenants:           NewTenantRepository(db),
		Users:             NewUserRepository(db),
		Bookings:          NewBookingRepository(db, participants),
		Participants:      participants,
		ServiceTypes:      NewServiceTypeRepository(db),
		Resources:         NewResourceRepository(db),
		RecurringPatterns: NewRecurringPatternRepository(db),
		Skills:            NewSkillRepository(db),
		Assessments:       NewAssessmentRepository(db),
		Goals:             NewGoalRepository(db),
		Badges:            NewBadgeRepository(db),
		Streaks:           NewStreakRepository(db),
		PersonalBests:     NewPersonalBestRepository(db),
		Media:             NewMediaRepository(db),
		Feedback:          NewFeedbackRepository(db),
		LessonNotes:       NewLessonNoteRepository(db),
		Notifications:     NewNotificationRepository(db),
		Messages:          NewMessageRepository(db),
		Invoices:          NewInvoiceRepository(db),
		Credits:           NewCreditRepository(db),
		Expenses:          NewExpenseRepository(db),
		AuditLogs:         NewAuditLogRepository(db),
	}
}

// DB returns the handle the repositories were built on
func (r *Repositories) DB() database.DBTX {
	return r.db
}

// getOne scans a single row, returning nil when there is none
func getOne[T any](ctx context.Context, db database.DBTX, query string, args ...interface{}) (*T, error) {
	var v T
	err := db.Get(ctx, &v, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// selectAll scans every row, returning an empty (non-nil) slice when there are none
func selectAll[T any](ctx context.Context, db database.DBTX, query string, args ...interface{}) ([]T, error) {
	out := []T{}
	if err := db.Select(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// affected reports sql.ErrNoRows when an UPDATE or DELETE touched nothing
func affected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
