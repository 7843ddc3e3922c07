package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"conferent-backend/internal/model"
	"conferent-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// pushPayload is the JSON body delivered to the browser.
type pushPayload struct {
	Event
	Message string `json:"message"`
}

// WorkerPool delivers events as web push notifications to every browser
// subscription of the event's user.
type WorkerPool struct {
	size    int
	jobs    chan Event
	subs    store.SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	loc     *time.Location
}

// NewWorkerPool creates a new worker pool. Events beyond queueSize pending
// ones are dropped.
func NewWorkerPool(size, queueSize int, subs store.SubscriptionStore, webpushOptions *webpush.Options, loc *time.Location) *WorkerPool {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, queueSize),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		loc:     loc,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.deliver(ctx, ev)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues ev without blocking. When the queue is full the event is
// dropped and logged.
func (wp *WorkerPool) Dispatch(ev Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("Notification queue full, dropping %s for user %d", ev.Kind, ev.UserID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

func (wp *WorkerPool) NotifyConfirmed(userID int64, roomName string, start, end time.Time) {
	wp.Dispatch(Event{Kind: KindConfirmed, UserID: userID, RoomName: roomName, Start: start, End: end})
}

func (wp *WorkerPool) NotifyCancelled(userID int64, roomName string, start, end time.Time) {
	wp.Dispatch(Event{Kind: KindCancelled, UserID: userID, RoomName: roomName, Start: start, End: end})
}

func (wp *WorkerPool) NotifyReminder(userID int64, roomName string, start time.Time) {
	wp.Dispatch(Event{Kind: KindReminder, UserID: userID, RoomName: roomName, Start: start})
}

// deliver fetches the user's subscriptions and pushes ev to each.
func (wp *WorkerPool) deliver(ctx context.Context, ev Event) {
	subscriptions, err := wp.subs.ListSubscriptionsByUser(ctx, ev.UserID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %d: %v", ev.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Event: ev, Message: ev.Message(wp.loc)})
	if err != nil {
		log.Printf("Error encoding %s for user %d: %v", ev.Kind, ev.UserID, err)
		return
	}

	log.Printf("Sending %d %s notifications to user %d", len(subscriptions), ev.Kind, ev.UserID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
