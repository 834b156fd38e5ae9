package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull возвращается, когда очередь доставки переполнена.
var ErrQueueFull = errors.New("notification queue is full")

// ErrDispatcherClosed возвращается после остановки Dispatcher.
var ErrDispatcherClosed = errors.New("notification dispatcher is closed")

type job struct {
	ctx       context.Context
	to        Recipient
	eventType string
	payload   map[string]any
}

// Dispatcher доставляет события в фоне через ограниченную очередь.
// Notify не ждёт каналов доставки, отмена контекста запроса на доставку
// не влияет.
type Dispatcher struct {
	next    Notifier
	log     *zap.Logger
	timeout time.Duration
	queue   chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher запускает workers обработчиков очереди размером size.
// timeout ограничивает доставку одного события.
func NewDispatcher(next Notifier, size, workers int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{
		next:    next,
		log:     log,
		timeout: timeout,
		queue:   make(chan job, size),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Notify ставит событие в очередь и сразу возвращает управление.
func (d *Dispatcher) Notify(ctx context.Context, to Recipient, eventType string, payload map[string]any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), to: to, eventType: eventType, payload: payload}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close прекращает приём событий и ждёт доставки уже поставленных в очередь.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
		if err := d.next.Notify(ctx, j.to, j.eventType, j.payload); err != nil {
			d.log.Warn("notification delivery failed",
				zap.String("event", j.eventType),
				zap.String("recipient", j.to.Key()),
				zap.Error(err),
			)
		}
		cancel()
	}
}
