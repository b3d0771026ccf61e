package records

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

var header = []string{"rows", "cols", "mines", "highscore"}

// FileStore keeps records in a CSV file that is rewritten in full on every
// update. It assumes a single writing process.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore opens the store at path, creating the file with just the
// header line if it does not exist yet.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:   path,
		logger: logger.With(slog.String("records", path)),
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
		s.logger.Debug("created records file")
	} else if err != nil {
		return nil, fmt.Errorf("unable to stat records file: %w", err)
	}
	return s, nil
}

func (s *FileStore) Lookup(ctx context.Context, rows, cols, mines int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return 0, err
	}
	// sorted, so the first match holds the lowest time
	for _, r := range records {
		if r.Matches(rows, cols, mines) {
			return r.Highscore, nil
		}
	}
	return NoRecord, nil
}

func (s *FileStore) Update(ctx context.Context, rows, cols, mines, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(records, func(r Record) bool {
		return r.Matches(rows, cols, mines)
	})
	if i >= 0 && records[i].Highscore <= seconds {
		return nil
	}
	records = slices.DeleteFunc(records, func(r Record) bool {
		return r.Matches(rows, cols, mines)
	})
	records = append(records, Record{rows, cols, mines, seconds})
	return s.write(records)
}

func (s *FileStore) All(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Close() error { return nil }

// read loads every well-formed record sorted by [Compare]. Malformed lines
// are logged and skipped so that a half-written file still loads.
func (s *FileStore) read() ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to open records file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields, err := parseLine(text)
		if err != nil {
			s.logger.Warn("skipping unreadable line", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		if line == 1 && slices.Equal(fields, header) {
			continue
		}
		r, err := parseRecord(fields)
		if err != nil {
			s.logger.Warn("skipping malformed record", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read records file: %w", err)
	}
	slices.SortFunc(records, Compare)
	return records, nil
}

// parseLine splits a single line. Each line gets its own reader so that an
// unbalanced quote cannot swallow the lines after it.
func parseLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	fields, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return fields, nil
}

func parseRecord(fields []string) (Record, error) {
	if len(fields) != len(header) {
		return Record{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, len(header), len(fields))
	}
	var values [4]int
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, header[i], err)
		}
		if v < 0 {
			return Record{}, fmt.Errorf("%w: negative %s", ErrMalformedRecord, header[i])
		}
		values[i] = v
	}
	return Record{values[0], values[1], values[2], values[3]}, nil
}

// write replaces the file with records sorted by [Compare]. The content is
// written to a temp file in the same directory and renamed over the old one.
func (s *FileStore) write(records []Record) error {
	slices.SortFunc(records, Compare)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create records directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temp records file: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	cw.Write(header)
	for _, r := range records {
		cw.Write([]string{
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.Cols),
			strconv.Itoa(r.Mines),
			strconv.Itoa(r.Highscore),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write records: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("unable to replace records file: %w", err)
	}
	return nil
}
