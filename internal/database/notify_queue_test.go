package database

import (
	"context"
	"testing"
	"time"

	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestNotifyTask(t *testing.T, db *DB, taskType string) *models.NotifyTask {
	t.Helper()
	task := &models.NotifyTask{
		TaskType: taskType,
		UserID:   1,
		Status:   "pending",
	}
	require.NoError(t, db.CreateNotifyTask(context.Background(), task))
	return task
}

func TestNotifyTask_CreateAndListPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestNotifyTask(t, db, "admin_notice")
	assert.NotZero(t, task.ID)

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "admin_notice", tasks[0].TaskType)
	assert.Equal(t, "pending", tasks[0].Status)
	assert.Zero(t, tasks[0].RetryCount)
	assert.Nil(t, tasks[0].ProcessedAt)
}

func TestNotifyTask_GetByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestNotifyTask(t, db, "customer_confirmation")

	got, err := db.GetNotifyTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "customer_confirmation", got.TaskType)
	assert.Equal(t, "pending", got.Status)

	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "completed", "", nil))
	got, err = db.GetNotifyTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)

	_, err = db.GetNotifyTask(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifyTask_RetrySchedulesBackoff(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestNotifyTask(t, db, "customer_confirmation")

	// A retry in the future must not show up as pending yet.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", "smtp timeout", &future))

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Once the backoff window passes the task becomes eligible again.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", "smtp timeout", &past))

	tasks, err = db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].RetryCount)
	require.NotNil(t, tasks[0].LastError)
	assert.Equal(t, "smtp timeout", *tasks[0].LastError)
}

func TestNotifyTask_CompletedSetsProcessedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestNotifyTask(t, db, "admin_notice")
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "completed", "", nil))

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestNotifyTask_FailedList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestNotifyTask(t, db, "password_reset")
	require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, "failed", "mailbox unavailable", nil))

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, task.ID, failed[0].ID)
	require.NotNil(t, failed[0].ProcessedAt)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "mailbox unavailable", *failed[0].LastError)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
