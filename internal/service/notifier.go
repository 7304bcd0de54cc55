package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/YusovID/service-requests/pkg/logger/sl"
)

// WorkflowNotifier is the external business-process engine. It is told about changes, it never decides them.
type WorkflowNotifier interface {
	StartProcess(ctx context.Context, requestID int64) error
	CompleteTask(ctx context.Context, requestID int64, status string) error
}

type notification struct {
	ctx   context.Context
	event string
	call  func(ctx context.Context) error
}

// notifications runs engine calls after commit. Calls for one request are
// delivered in the order they were sent, each request drained by its own
// tracked goroutine. Failures are logged and dropped.
type notifications struct {
	notifier WorkflowNotifier
	timeout  time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	queues map[int64][]notification
	wg     sync.WaitGroup
}

func newNotifications(notifier WorkflowNotifier, timeout time.Duration, log *slog.Logger) *notifications {
	return &notifications{
		notifier: notifier,
		timeout:  timeout,
		log:      log,
		queues:   make(map[int64][]notification),
	}
}

func (n *notifications) started(ctx context.Context, requestID int64) {
	n.send(ctx, requestID, "start", func(ctx context.Context) error {
		return n.notifier.StartProcess(ctx, requestID)
	})
}

func (n *notifications) changed(ctx context.Context, requestID int64, status string) {
	n.send(ctx, requestID, status, func(ctx context.Context) error {
		return n.notifier.CompleteTask(ctx, requestID, status)
	})
}

func (n *notifications) send(ctx context.Context, requestID int64, event string, call func(ctx context.Context) error) {
	if n.notifier == nil {
		return
	}

	// The caller's request may be finished before the engine answers.
	job := notification{ctx: context.WithoutCancel(ctx), event: event, call: call}

	n.mu.Lock()
	defer n.mu.Unlock()

	// A present key means a drain goroutine owns the queue.
	pending, draining := n.queues[requestID]
	n.queues[requestID] = append(pending, job)

	if draining {
		return
	}

	n.wg.Add(1)

	go n.drain(requestID)
}

func (n *notifications) drain(requestID int64) {
	defer n.wg.Done()

	for {
		n.mu.Lock()
		pending := n.queues[requestID]
		if len(pending) == 0 {
			delete(n.queues, requestID)
			n.mu.Unlock()

			return
		}

		job := pending[0]
		n.queues[requestID] = pending[1:]
		n.mu.Unlock()

		n.deliver(requestID, job)
	}
}

func (n *notifications) deliver(requestID int64, job notification) {
	ctx := job.ctx

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := job.call(ctx); err != nil {
		n.log.Warn("workflow notification failed",
			slog.Int64("request_id", requestID),
			slog.String("event", job.event),
			sl.Err(err),
		)
	}
}

func (n *notifications) wait() {
	n.wg.Wait()
}
