package queue

import (
    "context"
    "encoding/json"
    "errors"
    "log/slog"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

const (
    defaultBuffer      = 1024
    defaultDialTimeout = 2 * time.Second
    sendTimeout        = 2 * time.Second
    drainTimeout       = 3 * time.Second
    maxRetryBackoff    = 30 * time.Second
)

var (
    // ErrBufferFull is returned by Publish when the worker is behind; the
    // message is dropped.
    ErrBufferFull = errors.New("activity buffer full")
    // ErrPublisherClosed is returned by Publish after Close.
    ErrPublisherClosed = errors.New("activity publisher closed")
)

// Publisher sends SeatActivity messages to a durable queue from a single
// background worker.  Publish only enqueues, so a slow or unreachable
// broker never delays the seat transition that produced the message.  A
// Publisher with an empty URL drops every message, which keeps the broker
// optional in development.
type Publisher struct {
    url         string
    queue       string
    logger      *slog.Logger
    dialTimeout time.Duration

    msgs      chan SeatActivity
    quit      chan struct{}
    done      chan struct{}
    closeOnce sync.Once

    // owned by the worker goroutine
    conn    *amqp.Connection
    ch      *amqp.Channel
    retryAt time.Time
    backoff time.Duration
}

type PublisherOption func(*Publisher)

// WithBuffer sets how many messages may wait for the worker.
func WithBuffer(n int) PublisherOption {
    return func(p *Publisher) {
        if n > 0 {
            p.msgs = make(chan SeatActivity, n)
        }
    }
}

// WithDialTimeout bounds the TCP connect plus AMQP handshake.
func WithDialTimeout(d time.Duration) PublisherOption {
    return func(p *Publisher) {
        if d > 0 {
            p.dialTimeout = d
        }
    }
}

// NewPublisher returns a Publisher for url and, when url is set, starts
// its worker.  Close stops the worker.
func NewPublisher(url string, logger *slog.Logger, opts ...PublisherOption) *Publisher {
    p := &Publisher{
        url:         url,
        queue:       ActivityQueue,
        logger:      logger,
        dialTimeout: defaultDialTimeout,
        msgs:        make(chan SeatActivity, defaultBuffer),
        quit:        make(chan struct{}),
        done:        make(chan struct{}),
    }
    for _, opt := range opts {
        opt(p)
    }
    if p.Enabled() {
        go p.run()
    } else {
        close(p.done)
    }
    return p
}

// Enabled reports whether messages are actually sent.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// Publish enqueues ev without blocking.  It fails with ErrBufferFull when
// the worker is behind and ErrPublisherClosed after Close.
func (p *Publisher) Publish(_ context.Context, ev SeatActivity) error {
    if !p.Enabled() {
        return nil
    }
    select {
    case <-p.quit:
        return ErrPublisherClosed
    default:
    }
    select {
    case p.msgs <- ev:
        return nil
    default:
        return ErrBufferFull
    }
}

// Close stops accepting messages, gives the worker a short window to
// flush what is queued and releases the broker connection.
func (p *Publisher) Close() error {
    if p == nil {
        return nil
    }
    p.closeOnce.Do(func() { close(p.quit) })
    <-p.done
    return nil
}

func (p *Publisher) run() {
    defer close(p.done)
    defer p.reset()
    for {
        select {
        case ev := <-p.msgs:
            p.send(ev)
        case <-p.quit:
            p.drain()
            return
        }
    }
}

func (p *Publisher) drain() {
    deadline := time.Now().Add(drainTimeout)
    dropped := 0
    for {
        select {
        case ev := <-p.msgs:
            if time.Now().After(deadline) {
                dropped++
                continue
            }
            p.send(ev)
        default:
            if dropped > 0 {
                p.logger.Warn("rabbitmq: activity dropped on shutdown", "count", dropped)
            }
            return
        }
    }
}

func (p *Publisher) send(ev SeatActivity) {
    body, err := json.Marshal(ev)
    if err != nil {
        p.logger.Error("rabbitmq: marshal activity", "kind", ev.Kind, "err", err)
        return
    }
    ch, err := p.channel()
    if err != nil {
        p.logger.Debug("rabbitmq: activity dropped", "kind", ev.Kind, "seat_id", ev.SeatID, "err", err)
        return
    }
    ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
    defer cancel()
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         string(ev.Kind),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        p.logger.Warn("rabbitmq: publish failed", "kind", ev.Kind, "seat_id", ev.SeatID, "err", err)
        p.reset()
    }
}

var errBrokerBackoff = errors.New("broker unavailable, waiting before redial")

// channel returns the open channel, dialling when needed.  After a failed
// dial further attempts wait for an exponential backoff so a dead broker
// costs one dial timeout per backoff period, not one per message.
func (p *Publisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    if time.Now().Before(p.retryAt) {
        return nil, errBrokerBackoff
    }
    ch, err := p.dial()
    if err != nil {
        p.backoff = min(max(2*p.backoff, time.Second), maxRetryBackoff)
        p.retryAt = time.Now().Add(p.backoff)
        p.logger.Warn("rabbitmq: connect failed", "err", err, "retry_in", p.backoff)
        return nil, err
    }
    p.backoff = 0
    return ch, nil
}

func (p *Publisher) dial() (*amqp.Channel, error) {
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(p.dialTimeout),
    })
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
