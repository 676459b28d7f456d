// Package journal persists the tournament's audit trail: append-only
// NDJSON logs for validator corrections, showdowns and bot-harness
// events, plus the final results file. Journals never fail a
// tournament: the first write error logs one diagnostic and the
// journal goes quiet.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/fileutil"
	"github.com/botfelt/botfelt/internal/game"
	"github.com/botfelt/botfelt/internal/harness"
)

// File names inside the output directory.
const (
	CorrectionsFile = "illegal_moves.log"
	ShowdownsFile   = "showdown.log"
	EventsFile      = "bot_events.log"
	ResultsFile     = "results.json"
)

// Writer appends JSON lines to one log file.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	path   string
	logger *log.Logger
	broken bool
}

// NewWriter opens the log at path, creating it or appending to an
// earlier run's records.
func NewWriter(path string, logger *log.Logger) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return &Writer{
		file:   file,
		enc:    json.NewEncoder(file),
		path:   path,
		logger: logger,
	}, nil
}

// Write appends one record as a JSON line. Write errors never
// propagate: the first one logs a diagnostic and the journal drops
// everything after it.
func (w *Writer) Write(record any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.broken {
		return
	}
	if err := w.enc.Encode(record); err != nil {
		w.broken = true
		w.logger.Error("Journal write failed, dropping journal", "path", w.path, "error", err)
	}
}

// Close releases the file. Writes are unbuffered, so every record
// accepted before Close is already on disk.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Set bundles one tournament's journals in a single output directory.
type Set struct {
	dir         string
	corrections *Writer
	showdowns   *Writer
	events      *Writer
}

// OpenSet creates dir if needed and opens the three logs inside it.
func OpenSet(dir string, logger *log.Logger) (*Set, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}
	s := &Set{dir: dir}
	for _, j := range []struct {
		name string
		dst  **Writer
	}{
		{CorrectionsFile, &s.corrections},
		{ShowdownsFile, &s.showdowns},
		{EventsFile, &s.events},
	} {
		w, err := NewWriter(filepath.Join(dir, j.name), logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		*j.dst = w
	}
	return s, nil
}

// Correction journals one validator substitution.
func (s *Set) Correction(c game.Correction) {
	s.corrections.Write(c)
}

// showdownRecord flattens a hand's showdown for the journal.
type showdownRecord struct {
	Round     int                  `json:"round"`
	Board     []deck.Card          `json:"board"`
	Pot       int                  `json:"pot"`
	Players   []int                `json:"players"`
	Hands     map[int]string       `json:"hands"`
	HoleCards map[int][]deck.Card  `json:"hole_cards"`
	Winners   map[int]game.Winning `json:"winners"`
}

// HandResult journals the showdown of a finished hand. Hands that
// ended uncontested leave no line.
func (s *Set) HandResult(result *game.HandResult) {
	if !result.Showdown || result.ShowdownDetails == nil {
		return
	}
	d := result.ShowdownDetails
	s.showdowns.Write(showdownRecord{
		Round:     result.Round,
		Board:     result.Board,
		Pot:       result.Pot,
		Players:   d.Players,
		Hands:     d.Hands,
		HoleCards: d.HoleCards,
		Winners:   result.Winners,
	})
}

// Event journals one harness event: a timeout, crash, memory breach,
// protocol breach or restart.
func (s *Set) Event(e harness.Event) {
	s.events.Write(e)
}

// WriteResults writes the final standings to results.json atomically.
// Unlike the line journals this file is the tournament's product, so
// failures propagate.
func (s *Set) WriteResults(result *game.TournamentResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(filepath.Join(s.dir, ResultsFile), data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// Close releases every log.
func (s *Set) Close() error {
	var firstErr error
	for _, w := range []*Writer{s.corrections, s.showdowns, s.events} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
