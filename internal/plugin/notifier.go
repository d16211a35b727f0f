package plugin

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultQueueSize bounds the events waiting for plugin execution.
const DefaultQueueSize = 16

// Runner executes one plugin request.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Notifier forwards fired gestures to subscribed plugins on its own
// goroutine. OnGesture never blocks: events arriving while the queue is
// full are dropped.
type Notifier struct {
	mgr    *Manager
	runner Runner
	log    logrus.FieldLogger

	queue   chan gesture.Event
	dropped atomic.Int64
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// NewNotifier starts a notifier with a queue of size events.
func NewNotifier(mgr *Manager, runner Runner, size int) *Notifier {
	if size <= 0 {
		size = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		mgr:    mgr,
		runner: runner,
		log:    logrus.WithField("component", "plugin-notifier"),
		queue:  make(chan gesture.Event, size),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go n.run(ctx)
	return n
}

// OnGesture queues ev for the plugins subscribed to its label.
func (n *Notifier) OnGesture(ev gesture.Event) {
	if len(n.mgr.ForLabel(ev.Label)) == 0 {
		return
	}
	select {
	case n.queue <- ev:
	default:
		n.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded on a full queue.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Close stops the worker and waits for the running plugin to finish.
func (n *Notifier) Close() {
	n.once.Do(func() {
		n.cancel()
		<-n.done
	})
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.queue:
			n.deliver(ctx, ev)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, ev gesture.Event) {
	req := RequestFor(ev)
	for _, p := range n.mgr.ForLabel(ev.Label) {
		log := n.log.WithFields(logrus.Fields{"plugin": p.Manifest.Name, "label": ev.Label})
		resp, err := n.runner.Execute(ctx, p, req)
		switch {
		case err != nil:
			log.WithError(err).Warn("plugin failed")
		case !resp.Success:
			log.WithField("error", resp.Error).Warn("plugin reported failure")
		default:
			log.Debug("plugin executed")
		}
	}
}
