package implementation

import (
	"context"
	"errors"
	"testing"
	"time"

	"unsubly-be/internal/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlRecorder captures every statement gorm builds, so dry-run tests can
// assert on the generated SQL without a live database.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.Open("host=localhost user=dryrun dbname=dryrun"), &gorm.Config{
		Logger:                 rec,
		DryRun:                 true,
		DisableAutomaticPing:   true,
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, rec
}

func TestCancellationRequestUpdateLeavesInsertOnlyColumnsAlone(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewCancellationRequestRepository(db)

	now := time.Now().UTC()
	request := &entity.CancellationRequest{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		SubscriptionId:  uuid.New(),
		OrchestrationId: uuid.New().String(),
		Method:          entity.CancellationMethodApi,
		Priority:        entity.CancellationPriorityNormal,
		Status:          entity.CancellationStatusCompleted,
		Attempts:        2,
		CreatedAt:       now.Add(-time.Hour),
		CompletedAt:     &now,
	}

	require.NoError(t, repo.Update(context.Background(), request))

	sql := rec.last(t)
	assert.Contains(t, sql, `UPDATE "cancellation_requests"`)
	assert.Contains(t, sql, `"status"`)
	assert.Contains(t, sql, `"attempts"`)
	assert.Contains(t, sql, `"completed_at"`)

	// created_at and the owning ids are written once at insert; a lifecycle
	// update must never touch them.
	assert.NotContains(t, sql, `"created_at"`)
	assert.NotContains(t, sql, `"user_id"=`)
	assert.NotContains(t, sql, `"subscription_id"=`)
}

func TestMarkCancelledUpdatesOnlyCancellationColumns(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewSubscriptionRepository(db)

	subscription := &entity.Subscription{
		Id:       uuid.New(),
		UserId:   uuid.New(),
		Status:   entity.SubscriptionStatusActive,
		IsActive: true,
	}

	require.NoError(t, repo.MarkCancelled(context.Background(), subscription))

	assert.Equal(t, entity.SubscriptionStatusCancelled, subscription.Status)
	assert.False(t, subscription.IsActive)
	require.NotNil(t, subscription.CancelledAt)

	sql := rec.last(t)
	assert.Contains(t, sql, `UPDATE "subscriptions"`)
	assert.Contains(t, sql, `"is_active"`)
	assert.Contains(t, sql, `"cancelled_at"`)
	assert.NotContains(t, sql, `"created_at"`)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}
