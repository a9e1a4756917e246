// Package notes provides an append-only CSV memo store and the two tools
// that expose it: "save_memo" and "read_memos".
package notes

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/reactloop/tool"
)

const (
	// SaveName is the action name of the save tool.
	SaveName = "save_memo"
	// ReadName is the action name of the read tool.
	ReadName = "read_memos"

	// DefaultFile is the store location used when none is configured.
	DefaultFile = "memos.csv"
	// TimestampLayout is the layout of the timestamp column.
	TimestampLayout = "2006-01-02 15:04:05"
	// DefaultRecent is how many memos read_memos returns.
	DefaultRecent = 5
)

var header = []string{"timestamp", "note"}

// Note is one stored memo.
type Note struct {
	Timestamp string
	Text      string
}

// Store is an append-only CSV file of notes. Writes are serialized within
// the process; the file is never rewritten.
type Store struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// NewStore creates a store backed by path.
func NewStore(path string, optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if path == "" {
		path = DefaultFile
	}
	return &Store{path: path, now: opts.Now}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append stores text with the current timestamp. The header row is written
// when the file is created.
func (s *Store) Append(text string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	exists := statErr == nil

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Note{}, fmt.Errorf("open notes file: %w", err)
	}
	defer f.Close()

	note := Note{Timestamp: s.now().Format(TimestampLayout), Text: text}

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(header); err != nil {
			return Note{}, fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write([]string{note.Timestamp, note.Text}); err != nil {
		return Note{}, fmt.Errorf("write note: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Note{}, fmt.Errorf("flush notes file: %w", err)
	}
	return note, nil
}

// All returns every stored note in insertion order. A missing file yields
// no notes and no error.
func (s *Store) All() ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open notes file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var notes []Note
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read notes file: %w", err)
		}
		if first {
			first = false
			continue // header
		}
		if len(rec) < 2 {
			continue
		}
		notes = append(notes, Note{Timestamp: rec[0], Text: rec[1]})
	}
	return notes, nil
}

// Recent returns at most n of the newest notes, oldest first.
func (s *Store) Recent(n int) ([]Note, error) {
	notes, err := s.All()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(notes) > n {
		notes = notes[len(notes)-n:]
	}
	return notes, nil
}

// Tools returns the save and read tools sharing s.
func (s *Store) Tools() []tool.Tool {
	return []tool.Tool{NewSaveTool(s), NewReadTool(s)}
}

// SaveTool appends its input as a new memo.
type SaveTool struct{ store *Store }

// NewSaveTool creates the save_memo tool.
func NewSaveTool(s *Store) *SaveTool { return &SaveTool{store: s} }

// Name implements tool.Tool.
func (t *SaveTool) Name() string { return SaveName }

// Description implements tool.Tool.
func (t *SaveTool) Description() string {
	return "Save a memo with the current date and time, e.g. meeting tomorrow at 13:00"
}

// Call implements tool.Tool.
func (t *SaveTool) Call(_ context.Context, input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", tool.NewToolError(SaveName, "memo text is required", tool.CodeInvalidInput)
	}
	if _, err := t.store.Append(text); err != nil {
		return "", tool.NewToolError(SaveName, err.Error(), tool.CodeExecutionError)
	}
	return "Memo saved: " + text, nil
}

// ReadTool lists the most recent memos. Its input is ignored.
type ReadTool struct {
	store  *Store
	recent int
}

// NewReadTool creates the read_memos tool.
func NewReadTool(s *Store) *ReadTool { return &ReadTool{store: s, recent: DefaultRecent} }

// Name implements tool.Tool.
func (t *ReadTool) Name() string { return ReadName }

// Description implements tool.Tool.
func (t *ReadTool) Description() string {
	return fmt.Sprintf("List the latest %d saved memos; the argument is ignored", t.recent)
}

// Call implements tool.Tool.
func (t *ReadTool) Call(_ context.Context, _ string) (string, error) {
	notes, err := t.store.Recent(t.recent)
	if err != nil {
		return "", tool.NewToolError(ReadName, err.Error(), tool.CodeExecutionError)
	}
	if len(notes) == 0 {
		return "No memos saved yet", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Saved memos (latest %d):", len(notes))
	for _, n := range notes {
		fmt.Fprintf(&b, "\n- [%s] %s", n.Timestamp, n.Text)
	}
	return b.String(), nil
}
