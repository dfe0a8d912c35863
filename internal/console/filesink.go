package console

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// FileSink appends console events to a zstd-compressed JSONL file, one
// object per line. One file per run; callers own Close.
type FileSink struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

type fileEvent struct {
	TS    string `json:"ts"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

// NewFileSink opens (or creates) path for appending.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FileSink{f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

// Sink returns the writing sink bound to s. Write errors are swallowed;
// the sink contract is fire-and-forget.
func (s *FileSink) Sink() Sink {
	return func(level Level, msg string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.f == nil {
			return
		}
		b, err := json.Marshal(fileEvent{
			TS:    time.Now().UTC().Format(time.RFC3339Nano),
			Level: level.String(),
			Msg:   msg,
		})
		if err != nil {
			return
		}
		_, _ = s.w.Write(b)
		_ = s.w.WriteByte('\n')
	}
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.w.Flush()
	if e := s.enc.Close(); err == nil {
		err = e
	}
	if e := s.f.Close(); err == nil {
		err = e
	}
	s.f = nil
	return err
}
