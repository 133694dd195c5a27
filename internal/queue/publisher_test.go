package queue

import (
    "context"
    "errors"
    "net"
    "sync"
    "testing"
    "time"

    "github.com/iliyamo/event-seat-reservation/internal/obs"
)

// silentBroker accepts TCP connections and never speaks AMQP, so every
// handshake hangs until the client gives up.
func silentBroker(t *testing.T) string {
    t.Helper()
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil {
        t.Fatalf("listen: %v", err)
    }
    var (
        mu    sync.Mutex
        conns []net.Conn
    )
    go func() {
        for {
            c, err := ln.Accept()
            if err != nil {
                return
            }
            mu.Lock()
            conns = append(conns, c)
            mu.Unlock()
        }
    }()
    t.Cleanup(func() {
        ln.Close()
        mu.Lock()
        defer mu.Unlock()
        for _, c := range conns {
            c.Close()
        }
    })
    return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublisherDoesNotBlockOnSilentBroker(t *testing.T) {
    t.Parallel()

    p := NewPublisher(silentBroker(t), obs.Discard(), WithDialTimeout(200*time.Millisecond))
    defer p.Close()

    start := time.Now()
    for i := 0; i < 20; i++ {
        _ = p.Publish(context.Background(), SeatActivity{Kind: SeatLocked, SeatID: "s1", At: time.Now()})
    }
    if d := time.Since(start); d > 100*time.Millisecond {
        t.Fatalf("20 publishes took %s with a silent broker", d)
    }
}

func TestPublisherDropsWhenBufferFull(t *testing.T) {
    t.Parallel()

    p := NewPublisher(silentBroker(t), obs.Discard(), WithBuffer(1), WithDialTimeout(time.Second))
    defer p.Close()

    var full int
    for i := 0; i < 3; i++ {
        if err := p.Publish(context.Background(), SeatActivity{Kind: SeatReleased, SeatID: "s1"}); errors.Is(err, ErrBufferFull) {
            full++
        }
    }
    if full == 0 {
        t.Fatalf("expected at least one ErrBufferFull with a one-slot buffer")
    }
}

func TestPublisherCloseIsBounded(t *testing.T) {
    t.Parallel()

    p := NewPublisher(silentBroker(t), obs.Discard(), WithDialTimeout(200*time.Millisecond))
    for i := 0; i < 5; i++ {
        _ = p.Publish(context.Background(), SeatActivity{Kind: SeatExpired, SeatID: "s1"})
    }

    start := time.Now()
    if err := p.Close(); err != nil {
        t.Fatalf("close: %v", err)
    }
    if d := time.Since(start); d > drainTimeout+time.Second {
        t.Fatalf("close took %s", d)
    }
    if err := p.Publish(context.Background(), SeatActivity{Kind: SeatLocked, SeatID: "s1"}); !errors.Is(err, ErrPublisherClosed) {
        t.Fatalf("publish after close = %v, want ErrPublisherClosed", err)
    }
    if err := p.Close(); err != nil {
        t.Fatalf("second close: %v", err)
    }
}
