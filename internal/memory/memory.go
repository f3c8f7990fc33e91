package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/types"
)

const companiesKey = "companies"

var ErrNotFound = errors.New("memory: key not found")

// Store is a small JSON document keyed by name. The "companies" key holds
// the latest MemoryRecord per symbol. Every mutation rewrites the whole
// document through the backend before returning.
type Store struct {
	mu      sync.Mutex
	backend Backend
	data    map[string]json.RawMessage
}

var _ interfaces.MemoryStore = (*Store)(nil)

// Open loads the document from backend. A missing document gives an empty
// store; an unreadable or corrupt one is logged and also gives an empty
// store, which the next write replaces.
func Open(ctx context.Context, backend Backend) *Store {
	s := &Store{backend: backend, data: map[string]json.RawMessage{}}

	raw, err := backend.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "Could not load memory, starting with empty memory", "error", err.Error())
		return s
	}
	if len(raw) == 0 {
		return s
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		logger.Warn(ctx, "Could not decode memory document, starting with empty memory", "error", errString(err))
		return s
	}
	s.data = doc
	return s
}

// Get returns the raw JSON stored under key.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), v...), true
}

// Decode unmarshals the value under key into out.
func (s *Store) Decode(key string, out any) error {
	raw, ok := s.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Set stores value under key and flushes the document.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, key, raw)
}

// UpdateCompanyData replaces the record stored for symbol.
func (s *Store) UpdateCompanyData(ctx context.Context, symbol string, rec types.MemoryRecord) error {
	entry, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", symbol, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	companies := s.companies()
	companies[symbol] = entry

	raw, err := json.Marshal(companies)
	if err != nil {
		return fmt.Errorf("encode companies: %w", err)
	}
	return s.commit(ctx, companiesKey, raw)
}

// GetCompanyData returns the record stored for symbol.
func (s *Store) GetCompanyData(_ context.Context, symbol string) (types.MemoryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.companies()[symbol]
	if !ok {
		return types.MemoryRecord{}, false
	}

	var rec types.MemoryRecord
	if err := json.Unmarshal(entry, &rec); err != nil {
		return types.MemoryRecord{}, false
	}
	return rec, true
}

// Symbols lists the symbols that have a stored record.
func (s *Store) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0)
	for sym := range s.companies() {
		out = append(out, sym)
	}
	return out
}

// companies returns a fresh copy of the companies map. Callers hold mu.
func (s *Store) companies() map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	if raw, ok := s.data[companiesKey]; ok {
		// a non-object value is discarded on the next company write
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

// commit saves the document with key set to raw and only then applies the
// change in memory. Callers hold mu.
func (s *Store) commit(ctx context.Context, key string, raw json.RawMessage) error {
	next := make(map[string]json.RawMessage, len(s.data)+1)
	for k, v := range s.data {
		next[k] = v
	}
	next[key] = raw

	doc, err := json.MarshalIndent(next, "", "    ")
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := s.backend.Save(ctx, doc); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}

	s.data = next
	return nil
}

func errString(err error) string {
	if err == nil {
		return "document is null"
	}
	return err.Error()
}
