package log

import (
	"encoding/json"
	"path/filepath"

	"trimap.ai/internal/editor"
)

const framePrefix = "frames"

// FrameLogger writes one compressed JSONL entry per frame that changed
// something.
type FrameLogger struct{ w *Writer }

func NewFrameLogger(dir string) *FrameLogger {
	return &FrameLogger{w: NewWriter(filepath.Join(dir, "frames"), framePrefix)}
}

func (l *FrameLogger) WriteFrame(e editor.FrameLogEntry) error { return l.w.Write(e) }
func (l *FrameLogger) Close() error                            { return l.w.Close() }

// ReadFrames returns every entry under dir in write order. When limit is
// positive only the last limit entries are kept.
func ReadFrames(dir string, limit int) ([]editor.FrameLogEntry, error) {
	paths, err := Files(filepath.Join(dir, "frames"), framePrefix)
	if err != nil {
		return nil, err
	}
	var out []editor.FrameLogEntry
	for _, p := range paths {
		err := ReadLines(p, func(b []byte) error {
			var e editor.FrameLogEntry
			if err := json.Unmarshal(b, &e); err != nil {
				return err
			}
			out = append(out, e)
			if limit > 0 && len(out) > limit {
				out = out[1:]
			}
			return nil
		})
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
