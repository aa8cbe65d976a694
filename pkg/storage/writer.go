package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/metrics"
)

// DefaultRotationInterval bounds how long a Parquet file accumulates rows
// before being closed and renamed into place, matching this project's
// upstream fixed 5-minute rotation.
const DefaultRotationInterval = 5 * time.Minute

// slot is the state behind a Writer's active pointer: the temp file and the
// parquet-go encoder writing to it, plus the row count used to decide
// whether rotation produces a file worth keeping.
type slot struct {
	mu      sync.Mutex
	file    *os.File
	tmpPath string
	pw      *parquet.GenericWriter[map[string]any]
	rows    int64
}

// Writer owns one Parquet encoder per OCSF class, rotating it on a timer and
// renaming finished files into <dir>/<uuidv7>.parquet. Writes during
// rotation spin briefly against the new slot rather than blocking on a
// mutex the rotator holds for the whole finalize-and-rename sequence.
type Writer struct {
	dir              string
	schema           *parquet.Schema
	description      string
	schemaFile       string
	rotationInterval time.Duration

	active   atomic.Pointer[slot]
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	logger zerolog.Logger
}

// NewWriter creates a Writer rooted at dir, opening its first active slot
// immediately so Write can be called before Run starts the rotation loop.
func NewWriter(dir string, schema *parquet.Schema, description, schemaFile string) (*Writer, error) {
	w := &Writer{
		dir:              dir,
		schema:           schema,
		description:      description,
		schemaFile:       schemaFile,
		rotationInterval: DefaultRotationInterval,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
		logger:           log.WithClass(description),
	}
	s, err := w.newSlot()
	if err != nil {
		return nil, err
	}
	w.active.Store(s)
	return w, nil
}

func (w *Writer) newSlot() (*slot, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", errs.ErrFatalInit, w.dir, err)
	}
	f, err := os.CreateTemp("", ".striem-*.parquet.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file for %s: %v", errs.ErrFatalInit, w.dir, err)
	}

	opts := []parquet.WriterOption{
		w.schema,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata("created_by", "striem"),
		parquet.KeyValueMetadata("description", w.description),
	}
	if w.schemaFile != "" {
		opts = append(opts, parquet.KeyValueMetadata("schema_file", w.schemaFile))
	}

	pw := parquet.NewGenericWriter[map[string]any](f, opts...)

	return &slot{file: f, tmpPath: f.Name(), pw: pw}, nil
}

// Run starts the background rotation loop. It must be called at most once;
// Stop ends the loop and finalizes whatever slot is still active.
func (w *Writer) Run() {
	go func() {
		defer close(w.doneCh)
		ticker := time.NewTicker(w.rotationInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.rotate(); err != nil {
					w.logger.Error().Err(err).Str("dir", w.dir).Msg("failed to rotate parquet writer")
				}
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Write converts nothing itself — it accepts an already-converted record
// (the map[string]any produced by pkg/columnar.Convert) and appends it to
// whichever slot is currently active, retrying briefly if a rotation is
// in flight.
func (w *Writer) Write(record map[string]any) error {
	for attempt := 0; attempt < 1000; attempt++ {
		s := w.active.Load()
		s.mu.Lock()
		if s.pw == nil || s != w.active.Load() {
			s.mu.Unlock()
			continue
		}
		_, err := s.pw.Write([]map[string]any{record})
		if err == nil {
			s.rows++
		}
		s.mu.Unlock()
		if err != nil {
			metrics.WriteFailuresTotal.WithLabelValues(w.description).Inc()
			return fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
		}
		return nil
	}
	metrics.WriteFailuresTotal.WithLabelValues(w.description).Inc()
	return fmt.Errorf("%w: writer busy rotating", errs.ErrWriteFailed)
}

// Stop halts the rotation loop and finalizes the last active file, mirroring
// the finalize-on-drop behavior of this project's upstream writer.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		if err := w.rotate(); err != nil {
			w.logger.Error().Err(err).Str("dir", w.dir).Msg("failed to finalize parquet writer on stop")
		}
	})
}

// rotate swaps in a fresh slot and finalizes the previous one, renaming its
// temp file into place if it holds at least one row. The old slot's mutex
// is held only long enough to detach its encoder, file, and row count — a
// cheap, in-memory handoff — so a Write that loaded the old slot a moment
// before the swap blocks only for that handoff, never for the disk flush
// and rename that follow. A Write already in flight under the old slot's
// mutex still finishes first, since detaching needs the same lock.
func (w *Writer) rotate() error {
	next, err := w.newSlot()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrRotationFailed, err)
	}
	old := w.active.Swap(next)

	old.mu.Lock()
	pw := old.pw
	file := old.file
	tmpPath := old.tmpPath
	rows := old.rows
	old.pw = nil
	old.mu.Unlock()

	if err := pw.Close(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		metrics.RotationsTotal.WithLabelValues(w.description, "failed").Inc()
		return fmt.Errorf("%w: close parquet writer: %v", errs.ErrRotationFailed, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		metrics.RotationsTotal.WithLabelValues(w.description, "failed").Inc()
		return fmt.Errorf("%w: close temp file: %v", errs.ErrRotationFailed, err)
	}

	if rows == 0 {
		metrics.RotationsTotal.WithLabelValues(w.description, "discarded_empty").Inc()
		return os.Remove(tmpPath)
	}

	finalPath := filepath.Join(w.dir, uuid.Must(uuid.NewV7()).String()+".parquet")
	if err := os.Rename(tmpPath, finalPath); err != nil {
		metrics.RotationsTotal.WithLabelValues(w.description, "failed").Inc()
		return fmt.Errorf("%w: rename %s to %s: %v", errs.ErrRotationFailed, tmpPath, finalPath, err)
	}
	metrics.RotationsTotal.WithLabelValues(w.description, "finalized").Inc()
	w.logger.Debug().Str("path", finalPath).Int64("rows", rows).Msg("rotated parquet file")
	return nil
}
