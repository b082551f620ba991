package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const defaultChunkSize = 256 * 1024

// LocalSink copies files referenced by local paths into a managed destination
// directory, reporting percent progress per chunk.
type LocalSink struct {
	destDir   string
	chunkSize int
}

// NewLocalSink creates a sink that stores transferred files under destDir.
func NewLocalSink(destDir string) (*LocalSink, error) {
	if destDir == "" {
		return nil, fmt.Errorf("destination directory is required")
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create destination dir: %w", err)
	}
	return &LocalSink{destDir: destDir, chunkSize: defaultChunkSize}, nil
}

// Begin starts copying the file at fileRef and returns a progress stream.
// The stream always ends with either a 100-percent update or an error update.
func (s *LocalSink) Begin(ctx context.Context, fileRef string) (<-chan Progress, error) {
	src, err := os.Open(fileRef)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	info, err := src.Stat()
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("stat source: %w", err)
	}
	updates := make(chan Progress, 8)
	go s.copy(ctx, src, info.Size(), updates)
	return updates, nil
}

func (s *LocalSink) copy(ctx context.Context, src *os.File, total int64, updates chan<- Progress) {
	defer close(updates)
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.destDir, filepath.Base(src.Name())))
	if err != nil {
		updates <- Progress{Err: fmt.Errorf("create destination: %w", err)}
		return
	}
	defer dst.Close()

	buf := make([]byte, s.chunkSize)
	var written int64
	for {
		select {
		case <-ctx.Done():
			updates <- Progress{Err: ctx.Err()}
			return
		default:
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				updates <- Progress{Err: fmt.Errorf("write destination: %w", writeErr)}
				return
			}
			written += int64(n)
			updates <- Progress{Percent: percentOf(written, total)}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			updates <- Progress{Err: fmt.Errorf("read source: %w", readErr)}
			return
		}
	}
	updates <- Progress{Percent: 100}
}

// percentOf returns written/total as a percent, never reporting 100 before
// the copy is complete.
func percentOf(written, total int64) int {
	if total <= 0 {
		return 100
	}
	p := int(written * 100 / total)
	if p >= 100 && written < total {
		p = 99
	}
	if p > 100 {
		p = 100
	}
	return p
}
