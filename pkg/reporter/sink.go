package reporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/amosWeiskopf/linkscout/internal/models"
)

// ErrSinkWrite is returned when a record could not be appended.
var ErrSinkWrite = errors.New("sink write failed")

// ErrSinkClosed is returned when appending to a closed sink.
var ErrSinkClosed = errors.New("sink is closed")

// Header is the first row of every output file.
var Header = []string{"URL", "DoFollow Link"}

// Sink appends LinkRecords to a CSV file. It owns one file handle for
// its whole lifetime; appends are serialized and flushed one row at a time.
type Sink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// OpenSink opens path for appending, creating it with the header row
// when it does not exist or is empty. Existing content is never truncated.
func OpenSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat output file %s: %w", path, err)
	}

	s := &Sink{path: path, file: f, writer: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := s.writeRow(Header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

// Path returns the output file path.
func (s *Sink) Path() string {
	return s.path
}

// Append writes one record and flushes it to the file.
func (s *Sink) Append(rec models.LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, ErrSinkClosed)
	}
	return s.writeRow([]string{rec.PageURL, rec.Href})
}

func (s *Sink) writeRow(row []string) error {
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}

// Close syncs and closes the file. It is safe to call more than once.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil

	syncErr := f.Sync()
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file %s: %w", s.path, err)
	}
	if syncErr != nil {
		return fmt.Errorf("sync output file %s: %w", s.path, syncErr)
	}
	return nil
}
