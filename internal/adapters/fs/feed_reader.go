package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/ports"
)

// FeedReader implements ports.FrameSource by tailing the NDJSON landmark
// feed written by the external inference process. The reader tolerates the
// feed file appearing late and lines being appended while it reads; a
// partial trailing line is left in place until the writer completes it.
type FeedReader struct {
	path   string
	logger ports.Logger

	file   *os.File
	reader *bufio.Reader
	offset int64
}

// NewFeedReader creates a reader for the given feed file.
func NewFeedReader(path string, logger ports.Logger) *FeedReader {
	return &FeedReader{path: path, logger: logger}
}

// Open positions the reader according to the persisted state. A state
// recorded against a different feed path is ignored and reading starts
// from the beginning.
func (r *FeedReader) Open(ctx context.Context, state *domain.State) error {
	r.offset = 0
	if state != nil && state.FeedPath == r.path {
		r.offset = state.FeedOffset
	}
	// The feed may not exist yet; Next keeps retrying.
	if err := r.open(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// open opens the feed file and seeks to the current offset.
func (r *FeedReader) open() error {
	f, err := os.Open(r.path)
	if err != nil {
		return err
	}

	// A truncated or rotated feed restarts from the beginning.
	if info, err := f.Stat(); err == nil && info.Size() < r.offset {
		r.offset = 0
	}

	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		f.Close()
		return err
	}
	r.file = f
	r.reader = bufio.NewReader(f)
	return nil
}

// Next returns the next complete frame from the feed and the byte length
// of its line. Returns io.EOF when no complete line is available yet;
// malformed lines are skipped.
func (r *FeedReader) Next(ctx context.Context) (domain.LandmarkFrame, int, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.LandmarkFrame{}, 0, ctx.Err()
		default:
		}

		if r.file == nil {
			if err := r.open(); err != nil {
				if os.IsNotExist(err) {
					return domain.LandmarkFrame{}, 0, io.EOF
				}
				return domain.LandmarkFrame{}, 0, err
			}
		}

		line, err := r.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// A feed truncated or rotated under the open handle
				// shrinks below our offset; reopen from the start.
				if info, serr := os.Stat(r.path); serr == nil && info.Size() < r.offset {
					r.logger.Warn("feed shrank, restarting from the beginning",
						ports.Int64("offset", r.offset),
						ports.Int64("size", info.Size()),
					)
					r.Close()
					r.offset = 0
					continue
				}
				// Partial line: rewind so the bytes are re-read once the
				// writer finishes the line.
				if len(line) > 0 {
					if _, serr := r.file.Seek(r.offset, io.SeekStart); serr != nil {
						return domain.LandmarkFrame{}, 0, serr
					}
					r.reader.Reset(r.file)
				}
				return domain.LandmarkFrame{}, 0, io.EOF
			}
			return domain.LandmarkFrame{}, 0, err
		}

		lineLen := len(line)
		r.offset += int64(lineLen)

		var meta domain.FrameMeta
		if err := json.Unmarshal(line, &meta); err != nil {
			r.logger.Warn("skipping malformed feed line",
				ports.Int64("offset", r.offset-int64(lineLen)),
				ports.Err(err),
			)
			continue
		}
		return meta.ToFrame(), lineLen, nil
	}
}

// CurrentPosition returns the feed path and the offset of the next unread line.
func (r *FeedReader) CurrentPosition() (string, int64) {
	return r.path, r.offset
}

// Close releases the feed file handle.
func (r *FeedReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.reader = nil
	return err
}
