package build

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"github.com/klauspost/compress/zstd"
)

// FileLog is the daemon's rotating log file. Lines written to it are handed
// to a rotator goroutine through a pipe, old files are compressed.
type FileLog struct {
	rotator *rotator.Rotator
	pipe    *io.PipeWriter
	done    chan struct{}
}

var _ io.WriteCloser = (*FileLog)(nil)

// OpenFileLog creates the directory of path and starts rotating path once it
// grows beyond cfg.MaxLogFileSize megabytes.
func OpenFileLog(cfg *FileLoggerConfig, path string) (*FileLog, error) {
	compressor, err := newCompressor(cfg.Compressor)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w",
			err)
	}

	r, err := rotator.New(
		path, int64(cfg.MaxLogFileSize*1024), false, cfg.MaxLogFiles,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create log rotator: %w", err)
	}
	r.SetCompressor(compressor, logCompressors[cfg.Compressor])

	pr, pw := io.Pipe()
	f := &FileLog{
		rotator: r,
		pipe:    pw,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(f.done)

		// The log file itself failed, stderr is all that is left.
		if err := r.Run(pr); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotator stopped: "+
				"%v\n", err)
		}
	}()

	return f, nil
}

// Write hands b to the rotator.
func (f *FileLog) Write(b []byte) (int, error) {
	return f.pipe.Write(b)
}

// Close flushes pending lines and closes the current log file.
func (f *FileLog) Close() error {
	if err := f.pipe.Close(); err != nil {
		return err
	}
	<-f.done

	return f.rotator.Close()
}

// newCompressor returns the rotator compressor registered under name.
func newCompressor(name string) (rotator.Compressor, error) {
	switch name {
	case Gzip:
		return gzip.NewWriter(nil), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd "+
				"compressor: %w", err)
		}

		return enc, nil

	default:
		return nil, fmt.Errorf("unknown log compressor %q", name)
	}
}
