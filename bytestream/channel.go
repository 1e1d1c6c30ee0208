package bytestream

import (
	"context"
	"errors"
	"io"
	"sync"
)

const DefaultMaxBufferSize = 4096

var (
	// ErrClosedForWrite is returned by writes after a clean close.
	ErrClosedForWrite = errors.New("channel closed for write")
	// errCancelled is the stored cause when none was supplied.
	errCancelled = errors.New("channel cancelled")
)

// Source is the read half of a byte channel.
type Source interface {
	Read(ctx context.Context, p []byte) (int, error)
	ReadAvailable(ctx context.Context, p []byte) (int, error)
	AwaitContent(ctx context.Context) error
	CancelRead(cause error)
	IsClosedForRead() bool
}

// Sink is the write half of a byte channel.
type Sink interface {
	Write(ctx context.Context, p []byte) error
	Flush()
	Close()
	CloseWithCause(cause error)
	IsClosedForWrite() bool
	TotalBytesWritten() int64
}

// SdkByteChannel is a single-producer single-consumer byte channel. Exactly
// one reader and one writer may be active at a time; Flush, Close and
// CancelRead are safe from any goroutine and idempotent. A channel closed or
// cancelled with a cause keeps already-buffered bytes readable; once they
// are drained every operation surfaces the stored cause.
type SdkByteChannel struct {
	mu        sync.Mutex
	readable  *SdkBuffer
	staging   *SdkBuffer
	maxBuffer int
	autoFlush bool

	closedWrite  bool
	cause        error
	totalWritten int64

	change chan struct{}
}

type ChannelOption func(*SdkByteChannel)

// WithMaxBufferSize bounds the bytes held between producer and consumer.
func WithMaxBufferSize(n int) ChannelOption {
	return func(c *SdkByteChannel) {
		if n > 0 {
			c.maxBuffer = n
		}
	}
}

// WithAutoFlush makes every write immediately visible to the reader.
func WithAutoFlush(v bool) ChannelOption {
	return func(c *SdkByteChannel) { c.autoFlush = v }
}

func NewSdkByteChannel(opts ...ChannelOption) *SdkByteChannel {
	c := &SdkByteChannel{
		readable:  NewSdkBuffer(0),
		staging:   NewSdkBuffer(0),
		maxBuffer: DefaultMaxBufferSize,
		autoFlush: true,
		change:    make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// notify wakes all waiters. Callers hold c.mu.
func (c *SdkByteChannel) notify() {
	close(c.change)
	c.change = make(chan struct{})
}

// wait blocks until the channel state changes or ctx is done. Callers hold
// c.mu; the lock is released while parked.
func (c *SdkByteChannel) wait(ctx context.Context) error {
	ch := c.change
	c.mu.Unlock()
	defer c.mu.Lock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func (c *SdkByteChannel) buffered() int { return c.readable.Len() + c.staging.Len() }

// Write appends all of p, suspending while the internal buffer is full.
func (c *SdkByteChannel) Write(ctx context.Context, p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(p) > 0 {
		if c.cause != nil {
			return c.cause
		}
		if c.closedWrite {
			return ErrClosedForWrite
		}
		free := c.maxBuffer - c.buffered()
		if free <= 0 {
			if err := c.wait(ctx); err != nil {
				return err
			}
			continue
		}
		n := len(p)
		if n > free {
			n = free
		}
		if c.autoFlush {
			c.readable.Write(p[:n])
		} else {
			c.staging.Write(p[:n])
		}
		c.totalWritten += int64(n)
		p = p[n:]
		c.notify()
	}
	return nil
}

// WriteString appends the UTF-8 bytes of s.
func (c *SdkByteChannel) WriteString(ctx context.Context, s string) error {
	return c.Write(ctx, []byte(s))
}

// Flush makes all staged bytes visible to the reader.
func (c *SdkByteChannel) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
}

func (c *SdkByteChannel) flushLocked() {
	if c.staging.Len() > 0 {
		c.readable.WriteBuffer(c.staging)
		c.notify()
	}
}

// Close flushes staged bytes and closes the write side cleanly.
func (c *SdkByteChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedWrite {
		return
	}
	c.flushLocked()
	c.closedWrite = true
	c.notify()
}

// CloseWithCause closes the write side; a non-nil cause moves the channel to
// the failed state and is surfaced, identity preserved, once buffered bytes
// are drained.
func (c *SdkByteChannel) CloseWithCause(cause error) {
	if cause == nil {
		c.Close()
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cause != nil {
		return
	}
	c.flushLocked()
	c.closedWrite = true
	c.cause = cause
	c.notify()
}

// CancelRead abandons the read side. Pending and subsequent writes fail with
// cause; buffered bytes stay readable until drained.
func (c *SdkByteChannel) CancelRead(cause error) {
	if cause == nil {
		cause = errCancelled
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cause != nil {
		return
	}
	c.closedWrite = true
	c.cause = cause
	c.notify()
}

// Read transfers up to len(p) bytes. End of stream is io.EOF after a clean
// close, or the stored cause after a failure.
func (c *SdkByteChannel) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if c.readable.Len() > 0 {
			n := c.readable.ReadAvailable(p)
			c.notify()
			return n, nil
		}
		if c.closedWrite {
			c.flushLocked()
			if c.readable.Len() > 0 {
				continue
			}
			if c.cause != nil {
				return 0, c.cause
			}
			return 0, io.EOF
		}
		if err := c.wait(ctx); err != nil {
			return 0, err
		}
	}
}

// ReadAvailable never suspends while any byte is buffered; it suspends only
// when the channel is empty and still open.
func (c *SdkByteChannel) ReadAvailable(ctx context.Context, p []byte) (int, error) {
	return c.Read(ctx, p)
}

// ReadFully blocks until exactly len(p) bytes were delivered and fails if
// the channel closes early.
func (c *SdkByteChannel) ReadFully(ctx context.Context, p []byte) error {
	read := 0
	for read < len(p) {
		n, err := c.Read(ctx, p[read:])
		read += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// AwaitContent returns once at least one byte is readable or the write side
// has closed.
func (c *SdkByteChannel) AwaitContent(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if c.readable.Len() > 0 || c.closedWrite {
			return nil
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
	}
}

func (c *SdkByteChannel) IsClosedForWrite() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closedWrite
}

// IsClosedForRead flips only after the write side closed and every buffered
// byte has been consumed.
func (c *SdkByteChannel) IsClosedForRead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closedWrite && c.buffered() == 0
}

// TotalBytesWritten is monotone; it is not atomic across a partially
// completed write.
func (c *SdkByteChannel) TotalBytesWritten() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalWritten
}
