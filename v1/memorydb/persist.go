package memorydb

import (
	"context"
	"sync"
	"time"

	"github.com/Aleph-Alpha/querykit/v1/observability"
)

// persister owns the only goroutine that writes a table's snapshots.
// Requests coalesce in a channel of capacity one: while a request is pending
// further requests are dropped, and the pending write picks up every
// mutation made before it starts encoding.
type persister struct {
	table    string
	store    SnapshotStore
	encode   func() ([]byte, int, error)
	logger   Logger
	observer observability.Observer
	retry    time.Duration

	requests chan struct{}
	syncs    chan chan error
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newPersister(table string, store SnapshotStore, encode func() ([]byte, int, error), o options) *persister {
	p := &persister{
		table:    table,
		store:    store,
		encode:   encode,
		logger:   o.logger,
		observer: o.observer,
		retry:    o.retryInterval,
		requests: make(chan struct{}, 1),
		syncs:    make(chan chan error),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Request schedules a snapshot write without waiting for it.
func (p *persister) Request() {
	select {
	case p.requests <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.stopped)

	retry := time.NewTimer(p.retry)
	retry.Stop()
	defer retry.Stop()

	flush := func() error {
		err := p.write(context.Background())
		if err != nil {
			retry.Reset(p.retry)
		} else {
			retry.Stop()
		}
		return err
	}

	for {
		select {
		case <-p.requests:
			_ = flush()
		case <-retry.C:
			p.logger.Info("retrying snapshot write", nil, map[string]interface{}{"table": p.table})
			_ = flush()
		case reply := <-p.syncs:
			reply <- flush()
		case <-p.done:
			return
		}
	}
}

func (p *persister) write(ctx context.Context) error {
	start := time.Now()
	data, n, err := p.encode()
	if err == nil {
		err = p.store.Save(ctx, p.table, data)
	}

	if err != nil {
		p.logger.Error("failed to write table snapshot", err, map[string]interface{}{
			"table":          p.table,
			"will_retry_in":  p.retry.String(),
			"snapshot_bytes": len(data),
		})
	} else {
		p.logger.Debug("table snapshot written", nil, map[string]interface{}{
			"table":   p.table,
			"records": n,
		})
	}

	if p.observer != nil {
		oc := observability.Since(component, "snapshot", p.table, start, err)
		oc.Size = int64(len(data))
		oc.Context = ctx
		p.observer.ObserveOperation(oc)
	}
	return err
}

// Sync writes a snapshot on the writer goroutine and waits for the result.
func (p *persister) Sync(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case p.syncs <- reply:
	case <-p.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the writer goroutine and performs one last synchronous write.
// Only the first call of Close or Discard has an effect.
func (p *persister) Close(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		close(p.done)
		<-p.stopped
		err = p.write(ctx)
	})
	return err
}

// Discard stops the writer goroutine without writing.
func (p *persister) Discard() {
	p.stopOnce.Do(func() {
		close(p.done)
		<-p.stopped
	})
}
