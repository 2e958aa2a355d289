package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/database"
	"eventhub/internal/metrics"
	"eventhub/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskAdminNotice          = "admin_notice"
	TaskCustomerConfirmation = "customer_confirmation"
	TaskBookingCancelled     = "booking_cancelled"
	TaskPasswordReset        = "password_reset"
)

// Sender delivers a single rendered notification.
type Sender interface {
	SendBookingNotification(ctx context.Context, details *models.BookingDetails) error
	SendBookingConfirmation(ctx context.Context, details *models.BookingDetails) error
	SendBookingCancellation(ctx context.Context, details *models.BookingDetails) error
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}

// AdminNotifier pushes a short alert to the operations channel.
type AdminNotifier interface {
	NotifyBooking(ctx context.Context, details *models.BookingDetails, headline string) error
}

// notifyPayload is persisted in NotifyTask.Payload as JSON. Booking tasks
// carry only IDs; details are reloaded at delivery time so the email always
// reflects the current booking state.
type notifyPayload struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ResetURL string `json:"reset_url,omitempty"`
}

// NotifyWorker consumes notify_queue tasks and delivers them over email and
// telegram. Tasks survive restarts in the DB; redis is a fast path, the
// in-memory channel a fallback, and DB polling the safety net.
type NotifyWorker struct {
	db            *database.DB
	sender        Sender
	admin         AdminNotifier
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.NotifyTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// NewNotifyWorker builds a worker with sane defaults.
func NewNotifyWorker(db *database.DB, sender Sender, admin AdminNotifier, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotifyWorker{
		db:            db,
		sender:        sender,
		admin:         admin,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.NotifyTask, models.WorkerQueueSize),
		redisQueueKey: "notify:queue",
		deadLetterKey: "notify:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueTask persists the task to the DB and schedules it via redis or the
// in-memory queue.
func (w *NotifyWorker) EnqueueTask(ctx context.Context, taskType string, bookingID, userID int64, payload any) error {
	if taskType == "" {
		return errors.New("task type is required")
	}

	var payloadStr string
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		payloadStr = string(payloadBytes)
	}

	task := models.NotifyTask{
		TaskType:  taskType,
		BookingID: bookingID,
		UserID:    userID,
		Payload:   payloadStr,
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	if err := w.db.CreateNotifyTask(ctx, &task); err != nil {
		return fmt.Errorf("persist notify task: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("notify_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("notify_worker: in-memory queue full, task dropped to polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify_worker: started")
	defer w.logger.Info().Msg("notify_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingNotifyTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("notify_worker: fetch pending")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *NotifyWorker) tryLocalQueue() (models.NotifyTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.NotifyTask{}, false
	}
}

func (w *NotifyWorker) tryRedis(ctx context.Context) (models.NotifyTask, bool) {
	if w.redis == nil {
		return models.NotifyTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.NotifyTask{}, false
		}
		w.logger.Error().Err(err).Msg("notify_worker: redis BRPOP error")
		return models.NotifyTask{}, false
	}
	if len(res) != 2 {
		return models.NotifyTask{}, false
	}
	var task models.NotifyTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("notify_worker: decode redis task")
		return models.NotifyTask{}, false
	}
	return task, true
}

func (w *NotifyWorker) processTask(ctx context.Context, task *models.NotifyTask) {
	// The same task can surface twice, once from redis and once from a DB
	// poll. The DB row is authoritative; stale copies are dropped here.
	fresh, err := w.db.GetNotifyTask(ctx, task.ID)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: reload task")
		return
	}
	if fresh.Status != "pending" && fresh.Status != "retry" {
		return
	}

	if err := w.handleTask(ctx, fresh); err != nil {
		metrics.IncNotification(fresh.TaskType, "error")
		w.retryOrFail(ctx, fresh, err)
		return
	}

	metrics.IncNotification(fresh.TaskType, "ok")
	if err := w.db.UpdateNotifyTaskStatus(ctx, fresh.ID, "completed", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", fresh.ID).Msg("notify_worker: mark completed")
	}
}

func (w *NotifyWorker) handleTask(ctx context.Context, task *models.NotifyTask) error {
	switch task.TaskType {
	case TaskAdminNotice, TaskCustomerConfirmation, TaskBookingCancelled:
		if task.BookingID == 0 {
			return errors.New("booking id missing")
		}
		details, err := w.db.GetBookingDetails(ctx, task.BookingID)
		if err != nil {
			return fmt.Errorf("load booking %d: %w", task.BookingID, err)
		}
		return w.deliverBooking(ctx, task.TaskType, details)
	case TaskPasswordReset:
		var payload notifyPayload
		if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if payload.Email == "" || payload.ResetURL == "" {
			return errors.New("email or reset url missing")
		}
		return w.sender.SendPasswordReset(ctx, payload.Email, payload.Name, payload.ResetURL)
	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

func (w *NotifyWorker) deliverBooking(ctx context.Context, taskType string, details *models.BookingDetails) error {
	switch taskType {
	case TaskAdminNotice:
		if err := w.sender.SendBookingNotification(ctx, details); err != nil {
			return err
		}
		if w.admin != nil {
			if err := w.admin.NotifyBooking(ctx, details, "New booking"); err != nil {
				// Telegram is best-effort; email already went out.
				w.logger.Warn().Err(err).Int64("booking_id", details.ID).Msg("notify_worker: telegram notice failed")
			}
		}
		return nil
	case TaskCustomerConfirmation:
		return w.sender.SendBookingConfirmation(ctx, details)
	case TaskBookingCancelled:
		return w.sender.SendBookingCancellation(ctx, details)
	default:
		return fmt.Errorf("unknown booking task type: %s", taskType)
	}
}

func (w *NotifyWorker) retryOrFail(ctx context.Context, task *models.NotifyTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: mark failed")
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: mark retry")
	}
}

func (w *NotifyWorker) pushRedis(ctx context.Context, task models.NotifyTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *NotifyWorker) pushDeadLetter(ctx context.Context, task *models.NotifyTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: deadletter push")
	}
}
