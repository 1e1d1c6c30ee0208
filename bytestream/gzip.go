package bytestream

import (
	"context"
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipSource compresses the data produced by an underlying source; readers
// observe the gzip stream.
type GzipSource struct {
	src       Source
	compacted *SdkBuffer
	gz        *gzip.Writer
	staging   []byte
	srcDone   bool
	finished  bool
}

func NewGzipSource(src Source) *GzipSource {
	s := &GzipSource{
		src:       src,
		compacted: NewSdkBuffer(0),
		staging:   make([]byte, DefaultMaxBufferSize),
	}
	s.gz = gzip.NewWriter(s.compacted)
	return s
}

// fill pulls from the underlying source through the compressor until at
// least one compressed byte is available or the stream ends.
func (s *GzipSource) fill(ctx context.Context) error {
	for s.compacted.Len() == 0 && !s.finished {
		if s.srcDone {
			if err := s.gz.Close(); err != nil {
				return err
			}
			s.finished = true
			return nil
		}
		n, err := s.src.Read(ctx, s.staging)
		if n > 0 {
			if _, werr := s.gz.Write(s.staging[:n]); werr != nil {
				return werr
			}
			if ferr := s.gz.Flush(); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			s.srcDone = true
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *GzipSource) Read(ctx context.Context, p []byte) (int, error) {
	if err := s.fill(ctx); err != nil {
		return 0, err
	}
	if s.compacted.Len() == 0 {
		return 0, io.EOF
	}
	return s.compacted.ReadAvailable(p), nil
}

func (s *GzipSource) ReadAvailable(ctx context.Context, p []byte) (int, error) {
	return s.Read(ctx, p)
}

func (s *GzipSource) AwaitContent(ctx context.Context) error {
	if s.compacted.Len() > 0 || s.finished {
		return nil
	}
	return s.src.AwaitContent(ctx)
}

func (s *GzipSource) CancelRead(cause error) { s.src.CancelRead(cause) }

func (s *GzipSource) IsClosedForRead() bool {
	return s.finished && s.compacted.Len() == 0
}
