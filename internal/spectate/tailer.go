package spectate

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Tailer polls a replay journal file for newly appended complete lines and
// forwards each one to a Hub. Polling, not fsnotify, because the journal
// is written by the same process this runs in — a short poll interval is
// responsive enough without pulling in an inotify dependency for a
// same-process consumer.
type Tailer struct {
	path     string
	hub      *Hub
	interval time.Duration
	log      *slog.Logger
}

// NewTailer builds a Tailer for path, broadcasting new lines to hub every
// interval. A zero interval defaults to 200ms.
func NewTailer(path string, hub *Hub, interval time.Duration, log *slog.Logger) *Tailer {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tailer{path: path, hub: hub, interval: interval, log: log}
}

// Run polls until ctx is done. It tolerates the journal file not existing
// yet (the match engine opens it lazily on the first tick) and retries
// opening it until it appears.
func (t *Tailer) Run(ctx context.Context) error {
	var f *os.File
	defer func() {
		if f != nil {
			f.Close()
		}
	}()

	var pending bytes.Buffer
	buf := make([]byte, 64*1024)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if f == nil {
				opened, err := os.Open(t.path)
				if err != nil {
					continue
				}
				f = opened
			}

			for {
				n, err := f.Read(buf)
				if n > 0 {
					pending.Write(buf[:n])
				}
				if err != nil {
					if err != io.EOF {
						t.log.Warn("spectate: reading journal", "error", err)
					}
					break
				}
			}

			for {
				line, err := pending.ReadBytes('\n')
				if err != nil {
					// Incomplete line: push it back for the next poll.
					pending.Reset()
					pending.Write(line)
					break
				}
				t.hub.Broadcast(bytes.TrimRight(line, "\n"))
			}
		}
	}
}
