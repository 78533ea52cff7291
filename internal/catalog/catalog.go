// Package catalog provides read-only access to the question bank used to
// build a rosco: one random question per letter.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/scythe504/rosco-backend/internal"
)

var (
	ErrEmptyCatalog       = errors.New("catalog has no questions")
	ErrMissingLetter      = errors.New("catalog has no question for letter")
	ErrCatalogUnavailable = errors.New("catalog store unavailable")
)

//go:embed questions.csv
var defaultBank []byte

// Catalog looks up questions by letter.
type Catalog interface {
	Letters() []string
	Random(letter string) (internal.Question, bool)
}

// Entry is a single question row as stored in a bank.
type Entry struct {
	Letter   string
	Question string
	Answer   string
}

// Memory is an in-memory Catalog. Letters keep the order in which they were first added.
type Memory struct {
	letters   []string
	questions map[string][]internal.Question

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMemory builds a catalog from entries. Entries with an empty letter,
// question or answer are skipped.
func NewMemory(entries []Entry, rng *rand.Rand) (*Memory, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Memory{
		questions: make(map[string][]internal.Question),
		rng:       rng,
	}
	for _, e := range entries {
		letter := strings.ToUpper(strings.TrimSpace(e.Letter))
		q := internal.Question{
			Question: strings.TrimSpace(e.Question),
			Answer:   strings.TrimSpace(e.Answer),
		}
		if letter == "" || q.Question == "" || q.Answer == "" {
			continue
		}
		if _, seen := m.questions[letter]; !seen {
			m.letters = append(m.letters, letter)
		}
		m.questions[letter] = append(m.questions[letter], q)
	}
	if len(m.letters) == 0 {
		return nil, ErrEmptyCatalog
	}
	return m, nil
}

// Default returns the embedded question bank.
func Default() (*Memory, error) {
	entries, err := ReadCSV(bytes.NewReader(defaultBank))
	if err != nil {
		return nil, fmt.Errorf("read embedded bank: %w", err)
	}
	return NewMemory(entries, nil)
}

func (m *Memory) Letters() []string {
	return append([]string(nil), m.letters...)
}

func (m *Memory) Random(letter string) (internal.Question, bool) {
	list := m.questions[letter]
	if len(list) == 0 {
		return internal.Question{}, false
	}
	m.mu.Lock()
	idx := m.rng.Intn(len(list))
	m.mu.Unlock()
	return list[idx], true
}

// Entries flattens the catalog back into rows, letter order preserved.
func (m *Memory) Entries() []Entry {
	var out []Entry
	for _, letter := range m.letters {
		for _, q := range m.questions[letter] {
			out = append(out, Entry{Letter: letter, Question: q.Question, Answer: q.Answer})
		}
	}
	return out
}

// Pick draws one question per letter of c.
func Pick(c Catalog) ([]string, map[string]internal.Question, error) {
	letters := c.Letters()
	if len(letters) == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	questions := make(map[string]internal.Question, len(letters))
	for _, letter := range letters {
		q, ok := c.Random(letter)
		if !ok {
			return nil, nil, fmt.Errorf("%w %q", ErrMissingLetter, letter)
		}
		questions[letter] = q
	}
	return letters, questions, nil
}
