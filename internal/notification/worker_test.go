package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"conferent-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_DispatchIsNonBlocking(t *testing.T) {
	gormDB, _ := newTestDB(t)
	wp := NewWorkerPool(1, 1, store.NewGormStore(gormDB), &webpush.Options{}, time.UTC)

	start := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	wp.NotifyConfirmed(7, "Room 1", start, start.Add(time.Hour))

	done := make(chan struct{})
	go func() {
		// The queue holds one event; this one must be dropped, not block.
		wp.NotifyCancelled(7, "Room 1", start, start.Add(time.Hour))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	job := <-wp.Jobs()
	assert.Equal(t, KindConfirmed, job.Kind)
	assert.Equal(t, int64(7), job.UserID)
	assert.Empty(t, wp.Jobs())
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	wp := NewWorkerPool(1, 4, store.NewGormStore(gormDB), &webpush.Options{}, seoul)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	start := time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	subColumns := []string{"endpoint", "user_id", "p256dh", "auth", "created_at"}

	t.Run("sends notification to each subscription of the user", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		var mu sync.Mutex
		var endpoints []string
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				var body map[string]any
				assert.NoError(t, json.Unmarshal(payload, &body))
				assert.Equal(t, "reservation.confirmed", body["kind"])
				assert.Equal(t, "Reservation confirmed: Room 1, 2024-01-15 14:00 ~ 2024-01-15 16:00", body["message"])
				mu.Lock()
				endpoints = append(endpoints, sub.Endpoint)
				mu.Unlock()
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE user_id = \$1`).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(subColumns).
				AddRow("https://example.com/a", 3, "k1", "a1", time.Now()).
				AddRow("https://example.com/b", 3, "k2", "a2", time.Now()))

		wp.NotifyConfirmed(3, "Room 1", start, end)
		wg.Wait()

		assert.ElementsMatch(t, []string{"https://example.com/a", "https://example.com/b"}, endpoints)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE user_id = \$1`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows(subColumns).
				AddRow("https://example.com/expired", 4, "k", "a", time.Now()))

		// Expect the delete operation
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE endpoint = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.NotifyReminder(4, "Room 2", start)

		assert.Eventually(t, func() bool {
			return mock.ExpectationsWereMet() == nil
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("sends nothing when the user has no subscription", func(t *testing.T) {
		sent := make(chan struct{}, 1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				sent <- struct{}{}
				return nil, errors.New("unexpected send")
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE user_id = \$1`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(subColumns))

		wp.NotifyCancelled(5, "Room 3", start, end)

		assert.Eventually(t, func() bool {
			return mock.ExpectationsWereMet() == nil
		}, time.Second, 10*time.Millisecond)
		assert.Never(t, func() bool { return len(sent) > 0 }, 50*time.Millisecond, 10*time.Millisecond)
	})
}

func TestEvent_Message(t *testing.T) {
	start := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	assert.Equal(t, "Reservation cancelled: Board, 2024-01-15 14:00 ~ 2024-01-15 15:00",
		Event{Kind: KindCancelled, RoomName: "Board", Start: start, End: end}.Message(time.UTC))
	assert.Equal(t, "Reminder: Board starts at 2024-01-15 14:00",
		Event{Kind: KindReminder, RoomName: "Board", Start: start}.Message(time.UTC))
	// An end time on a reminder never leaks into its text.
	assert.Equal(t, "Reminder: Board starts at 2024-01-15 14:00",
		Event{Kind: KindReminder, RoomName: "Board", Start: start, End: end}.Message(time.UTC))
	assert.Equal(t, "Reservation confirmed: Board, 2024-01-15 14:00 ~ 2024-01-15 15:00",
		Event{Kind: KindConfirmed, RoomName: "Board", Start: start, End: end}.Message(time.UTC))
}

// recordingNotifier counts calls per kind.
type recordingNotifier struct {
	mu    sync.Mutex
	kinds []Kind
}

func (r *recordingNotifier) add(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, k)
}

func (r *recordingNotifier) NotifyConfirmed(int64, string, time.Time, time.Time) {
	r.add(KindConfirmed)
}

func (r *recordingNotifier) NotifyCancelled(int64, string, time.Time, time.Time) {
	r.add(KindCancelled)
}

func (r *recordingNotifier) NotifyReminder(int64, string, time.Time) {
	r.add(KindReminder)
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	m := Multi{a, b}
	now := time.Now()

	m.NotifyConfirmed(1, "r", now, now)
	m.NotifyCancelled(1, "r", now, now)
	m.NotifyReminder(1, "r", now)

	want := []Kind{KindConfirmed, KindCancelled, KindReminder}
	assert.Equal(t, want, a.kinds)
	assert.Equal(t, want, b.kinds)
}
