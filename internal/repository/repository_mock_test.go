package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"swimschool/internal/database"
	"swimschool/internal/models"
	"swimschool/internal/repository"
)

func newMock(t *testing.T, dialect database.Dialect) (*repository.Repositories, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := database.NewWithDialect(sqlx.NewDb(db, "sqlmock"), dialect)
	return repository.New(wrapped), mock
}

func TestBookingDelete_RemovesParticipantsFirst(t *testing.T) {
	repos, mock := newMock(t, database.NewPostgresDialect())

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM booking_participants WHERE booking_id = $1`)).
		WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookings WHERE id = $1 AND tenant_id = $2`)).
		WithArgs(int64(7), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repos.Bookings.Delete(context.Background(), 1, 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDelete_ParticipantFailureKeepsBooking(t *testing.T) {
	repos, mock := newMock(t, database.NewSQLiteDialect())

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM booking_participants WHERE booking_id = ?`)).
		WithArgs(int64(7)).WillReturnError(errors.New("disk full"))

	err := repos.Bookings.Delete(context.Background(), 1, 7)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantCreate_PostgresUsesReturning(t *testing.T) {
	repos, mock := newMock(t, database.NewPostgresDialect())

	mock.ExpectQuery(`(?s)INSERT INTO tenants.*VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\) RETURNING id`).
		WithArgs("Blue Lagoon", "", "", "UTC", "USD", "swimming", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	tenant := &models.Tenant{Name: "Blue Lagoon", Timezone: "UTC", Currency: "USD", CoachingType: "swimming",
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repos.Tenants.Create(context.Background(), tenant))
	require.Equal(t, int64(42), tenant.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalGetByID_NoRows(t *testing.T) {
	repos, mock := newMock(t, database.NewSQLiteDialect())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM goals WHERE id = ?`)).
		WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	goal, err := repos.Goals.GetByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, goal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalUpdate_MissingRow(t *testing.T) {
	repos, mock := newMock(t, database.NewSQLiteDialect())

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE goals SET`)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repos.Goals.Update(context.Background(), &models.Goal{ID: 5})
	require.Error(t, err)
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListByRole_BuildsInClause(t *testing.T) {
	repos, mock := newMock(t, database.NewPostgresDialect())

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE tenant_id = $1 AND role IN ($2, $3) ORDER BY id`)).
		WithArgs(int64(3), "owner", "instructor").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "role", "first_name"}).
			AddRow(1, 3, "owner", "Sam").
			AddRow(2, 3, "instructor", "Jo"))

	users, err := repos.Users.ListByRole(context.Background(), 3, models.RoleOwner, models.RoleInstructor)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, models.RoleInstructor, users[1].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListByRole_NoRoles(t *testing.T) {
	repos, mock := newMock(t, database.NewSQLiteDialect())

	users, err := repos.Users.ListByRole(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}
