package transport

import (
	"bytes"
	"context"
	"io"

	"github.com/smithkit/smithkit/bytestream"
)

type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyBytes
	BodyStreaming
)

// Body is the request or response payload. Streaming bodies wrap a byte
// channel and are replayable only when the producer supplied a rewind hook;
// signers require replayability to hash the payload.
type Body interface {
	Kind() BodyKind
	// ContentLength returns the payload size, or -1 when unknown.
	ContentLength() int64
	// Replayable reports whether Reset can rewind the body for another read.
	Replayable() bool
	// Reset rewinds a replayable body to its start.
	Reset() error
	// Reader exposes the payload for consumption.
	Reader() io.Reader
}

type EmptyBody struct{}

func (EmptyBody) Kind() BodyKind        { return BodyEmpty }
func (EmptyBody) ContentLength() int64  { return 0 }
func (EmptyBody) Replayable() bool      { return true }
func (EmptyBody) Reset() error          { return nil }
func (EmptyBody) Reader() io.Reader     { return bytes.NewReader(nil) }

// BytesBody is an in-memory payload. It is always replayable.
type BytesBody struct {
	data   []byte
	reader *bytes.Reader
}

func NewBytesBody(data []byte) *BytesBody {
	return &BytesBody{data: data, reader: bytes.NewReader(data)}
}

func (b *BytesBody) Kind() BodyKind       { return BodyBytes }
func (b *BytesBody) ContentLength() int64 { return int64(len(b.data)) }
func (b *BytesBody) Replayable() bool     { return true }
func (b *BytesBody) Bytes() []byte        { return b.data }

func (b *BytesBody) Reset() error {
	_, err := b.reader.Seek(0, io.SeekStart)
	return err
}

func (b *BytesBody) Reader() io.Reader { return b.reader }

// StreamingBody carries a byte channel. The channel is wrapped into an
// io.Reader bound to ctx; a streaming body is replayable only when a rewind
// function was supplied by the producer.
type StreamingBody struct {
	ctx     context.Context
	channel bytestream.Source
	length  int64
	rewind  func() error
}

type StreamingBodyOption func(*StreamingBody)

// WithContentLength declares the stream length when it is known up front.
func WithContentLength(n int64) StreamingBodyOption {
	return func(b *StreamingBody) { b.length = n }
}

// WithRewind makes the stream replayable through the supplied reset hook,
// which must leave the channel readable from the start again.
func WithRewind(fn func() error) StreamingBodyOption {
	return func(b *StreamingBody) { b.rewind = fn }
}

func NewStreamingBody(ctx context.Context, ch bytestream.Source, opts ...StreamingBodyOption) *StreamingBody {
	b := &StreamingBody{ctx: ctx, channel: ch, length: -1}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *StreamingBody) Kind() BodyKind       { return BodyStreaming }
func (b *StreamingBody) ContentLength() int64 { return b.length }
func (b *StreamingBody) Replayable() bool     { return b.rewind != nil }

func (b *StreamingBody) Reset() error {
	if b.rewind == nil {
		return ErrBodyNotReplayable
	}
	return b.rewind()
}

func (b *StreamingBody) Reader() io.Reader {
	return bytestream.NewSourceReader(b.ctx, b.channel)
}

func (b *StreamingBody) Channel() bytestream.Source { return b.channel }

// Cancel releases the stream, surfacing cause to any blocked producer.
func (b *StreamingBody) Cancel(cause error) { b.channel.CancelRead(cause) }
