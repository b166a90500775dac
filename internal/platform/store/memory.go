package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Memory keeps documents in process. Used for local runs and tests.
type Memory struct {
	mu       sync.RWMutex
	tables   map[string]map[string][]byte
	pageSize int
	logger   zerolog.Logger
}

func NewMemory(pageSize int, logger zerolog.Logger) *Memory {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Memory{
		tables:   make(map[string]map[string][]byte),
		pageSize: pageSize,
		logger:   logger,
	}
}

func (m *Memory) Get(ctx context.Context, table, key string, out any) error {
	m.mu.RLock()
	raw, ok := m.tables[table][key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *Memory) Put(ctx context.Context, table, key string, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", table, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = make(map[string][]byte)
		m.tables[table] = t
	}
	t[key] = raw
	return nil
}

func (m *Memory) Update(ctx context.Context, table, key string, fields map[string]any) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", table, key, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", table, key, err)
	}
	m.tables[table][key] = merged
	return Document(merged), nil
}

func (m *Memory) Delete(ctx context.Context, table, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables[table], key)
	return nil
}

func (m *Memory) Scan(ctx context.Context, table string, filters ...Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := m.sortedKeys(table)
	var out []Document
	for _, k := range keys {
		raw := m.tables[table][k]
		ok, err := matches(raw, filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Document(raw))
		if len(out) == m.pageSize {
			m.logger.Warn().Str("table", table).Int("page_size", m.pageSize).Msg("scan page full, results may be truncated")
			break
		}
	}
	return out, nil
}

func (m *Memory) Query(ctx context.Context, table string, idx Index, value string, descending bool) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type row struct {
		key  string
		sort string
		raw  []byte
	}
	var rows []row
	for _, k := range m.sortedKeys(table) {
		raw := m.tables[table][k]
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", table, k, err)
		}
		if fmt.Sprint(doc[idx.PartitionKey]) != value {
			continue
		}
		sk, _ := doc[idx.SortKey].(string)
		rows = append(rows, row{key: k, sort: sk, raw: raw})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return rows[i].sort > rows[j].sort
		}
		return rows[i].sort < rows[j].sort
	})
	if len(rows) > m.pageSize {
		m.logger.Warn().Str("table", table).Str("index", idx.Name).Int("page_size", m.pageSize).Msg("query page full, results truncated")
		rows = rows[:m.pageSize]
	}
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, Document(r.raw))
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) sortedKeys(table string) []string {
	keys := make([]string, 0, len(m.tables[table]))
	for k := range m.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func matches(raw []byte, filters []Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}
	for _, f := range filters {
		v, present := doc[f.Field]
		switch f.Op {
		case OpExists:
			if !present {
				return false, nil
			}
		case OpNotExists:
			if present {
				return false, nil
			}
		case OpEquals:
			s, ok := v.(string)
			if !present || !ok || s != f.Value {
				return false, nil
			}
		}
	}
	return true, nil
}
