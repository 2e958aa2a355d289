package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eventhub/internal/database"
	"eventhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	notifications []string
	confirmations []string
	cancellations []string
	resets        []string
	err           error
}

func (s *fakeSender) SendBookingNotification(ctx context.Context, details *models.BookingDetails) error {
	if s.err != nil {
		return s.err
	}
	s.notifications = append(s.notifications, details.EventTitle)
	return nil
}

func (s *fakeSender) SendBookingConfirmation(ctx context.Context, details *models.BookingDetails) error {
	if s.err != nil {
		return s.err
	}
	s.confirmations = append(s.confirmations, details.Status)
	return nil
}

func (s *fakeSender) SendBookingCancellation(ctx context.Context, details *models.BookingDetails) error {
	if s.err != nil {
		return s.err
	}
	s.cancellations = append(s.cancellations, details.EventTitle)
	return nil
}

func (s *fakeSender) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	if s.err != nil {
		return s.err
	}
	s.resets = append(s.resets, resetURL)
	return nil
}

type fakeAdminNotifier struct {
	headlines []string
	err       error
}

func (n *fakeAdminNotifier) NotifyBooking(ctx context.Context, details *models.BookingDetails, headline string) error {
	if n.err != nil {
		return n.err
	}
	n.headlines = append(n.headlines, headline)
	return nil
}

func setupWorkerDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestWorker(t *testing.T, db *database.DB, sender Sender, admin AdminNotifier, redisClient *redis.Client) *NotifyWorker {
	t.Helper()
	logger := zerolog.Nop()
	return NewNotifyWorker(db, sender, admin, redisClient, RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}, &logger)
}

func seedBooking(t *testing.T, db *database.DB) *models.Booking {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Name: "Test User", Email: "worker@example.com", PasswordHash: "h", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.CreateUser(ctx, user))

	event := &models.Event{
		Title: "Gala Night", Description: "d", Date: time.Now().AddDate(0, 1, 0),
		Location: "Hall A", Price: 100, Category: "wedding", MaxAttendees: 50,
	}
	require.NoError(t, db.CreateEvent(ctx, event))

	booking := &models.Booking{
		UserID: user.ID, EventID: event.ID, Attendees: 2, TotalAmount: 200,
		DecorationPackage:  models.PackageNone,
		ContactInfo:        models.ContactInfo{Name: "Jane", Email: "jane@example.com", Phone: "+100"},
		Status:             models.StatusPending,
		PaymentStatus:      models.PaymentPending,
		ConfirmationNumber: "EVT-worker-1",
	}
	require.NoError(t, db.CreateBooking(ctx, booking))
	return booking
}

func TestEnqueueTask_PersistsAndQueuesLocally(t *testing.T) {
	db := setupWorkerDB(t)
	w := newTestWorker(t, db, &fakeSender{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, TaskAdminNotice, 42, 7, nil))

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskAdminNotice, tasks[0].TaskType)
	assert.EqualValues(t, 42, tasks[0].BookingID)

	local, ok := w.tryLocalQueue()
	require.True(t, ok)
	assert.Equal(t, tasks[0].ID, local.ID)

	_, ok = w.tryLocalQueue()
	assert.False(t, ok)
}

func TestEnqueueTask_RequiresType(t *testing.T) {
	db := setupWorkerDB(t)
	w := newTestWorker(t, db, &fakeSender{}, nil, nil)

	err := w.EnqueueTask(context.Background(), "", 1, 1, nil)
	assert.Error(t, err)
}

func TestEnqueueTask_RedisFastPath(t *testing.T) {
	db := setupWorkerDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	w := newTestWorker(t, db, &fakeSender{}, nil, client)
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, TaskCustomerConfirmation, 42, 7, nil))

	// The task went to redis, not the local channel.
	_, ok := w.tryLocalQueue()
	assert.False(t, ok)

	task, ok := w.tryRedis(ctx)
	require.True(t, ok)
	assert.Equal(t, TaskCustomerConfirmation, task.TaskType)
	assert.EqualValues(t, 42, task.BookingID)
}

func TestProcessTask_BookingDelivery(t *testing.T) {
	db := setupWorkerDB(t)
	sender := &fakeSender{}
	admin := &fakeAdminNotifier{}
	w := newTestWorker(t, db, sender, admin, nil)
	ctx := context.Background()

	booking := seedBooking(t, db)
	require.NoError(t, w.EnqueueTask(ctx, TaskAdminNotice, booking.ID, booking.UserID, nil))
	require.NoError(t, w.EnqueueTask(ctx, TaskCustomerConfirmation, booking.ID, booking.UserID, nil))
	require.NoError(t, w.EnqueueTask(ctx, TaskBookingCancelled, booking.ID, booking.UserID, nil))

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i := range tasks {
		w.processTask(ctx, &tasks[i])
	}

	assert.Equal(t, []string{"Gala Night"}, sender.notifications)
	assert.Equal(t, []string{models.StatusPending}, sender.confirmations)
	assert.Equal(t, []string{"Gala Night"}, sender.cancellations)
	assert.Equal(t, []string{"New booking"}, admin.headlines)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessTask_TelegramFailureDoesNotFailTask(t *testing.T) {
	db := setupWorkerDB(t)
	sender := &fakeSender{}
	admin := &fakeAdminNotifier{err: errors.New("chat unreachable")}
	w := newTestWorker(t, db, sender, admin, nil)
	ctx := context.Background()

	booking := seedBooking(t, db)
	require.NoError(t, w.EnqueueTask(ctx, TaskAdminNotice, booking.ID, booking.UserID, nil))

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	w.processTask(ctx, &tasks[0])

	// Email went out, so the task completes despite the telegram error.
	assert.Len(t, sender.notifications, 1)
	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessTask_PasswordReset(t *testing.T) {
	db := setupWorkerDB(t)
	sender := &fakeSender{}
	w := newTestWorker(t, db, sender, nil, nil)
	ctx := context.Background()

	payload := map[string]string{
		"email":     "jane@example.com",
		"name":      "Jane",
		"reset_url": "http://localhost:3000/reset-password/raw-token",
	}
	require.NoError(t, w.EnqueueTask(ctx, TaskPasswordReset, 0, 7, payload))

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	w.processTask(ctx, &tasks[0])

	assert.Equal(t, []string{"http://localhost:3000/reset-password/raw-token"}, sender.resets)
}

func TestProcessTask_RetryThenDeadLetter(t *testing.T) {
	db := setupWorkerDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sender := &fakeSender{err: errors.New("smtp down")}
	w := newTestWorker(t, db, sender, nil, client)
	ctx := context.Background()

	payload := map[string]string{"email": "jane@example.com", "reset_url": "http://x/reset"}
	require.NoError(t, w.EnqueueTask(ctx, TaskPasswordReset, 0, 7, payload))

	task, ok := w.tryRedis(ctx)
	require.True(t, ok)

	// First failure schedules a retry.
	w.processTask(ctx, &task)
	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, failed)

	// Second failure exhausts MaxRetries=2 and dead-letters the task.
	w.processTask(ctx, &task)

	failed, err = db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "smtp down", *failed[0].LastError)

	dead, err := client.LLen(ctx, w.deadLetterKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, dead)
}

func TestProcessTask_UnknownType(t *testing.T) {
	db := setupWorkerDB(t)
	w := newTestWorker(t, db, &fakeSender{}, nil, nil)
	ctx := context.Background()

	task := &models.NotifyTask{TaskType: "carrier_pigeon", Status: "pending", RetryCount: 5}
	require.NoError(t, db.CreateNotifyTask(ctx, task))
	w.processTask(ctx, task)

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
}

func TestProcessTask_DuplicateDeliverySkipped(t *testing.T) {
	db := setupWorkerDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sender := &fakeSender{}
	w := newTestWorker(t, db, sender, nil, client)
	ctx := context.Background()

	payload := map[string]string{"email": "jane@example.com", "reset_url": "http://x/reset"}
	require.NoError(t, w.EnqueueTask(ctx, TaskPasswordReset, 0, 7, payload))

	// A DB poll completes the task while its redis copy is still queued.
	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	w.processTask(ctx, &tasks[0])
	require.Len(t, sender.resets, 1)

	stale, ok := w.tryRedis(ctx)
	require.True(t, ok)
	w.processTask(ctx, &stale)

	// The stale copy is dropped instead of sending the email twice.
	assert.Len(t, sender.resets, 1)
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 10*time.Second, policy.NextDelay(10))
	assert.Equal(t, time.Second, policy.NextDelay(0))
}
