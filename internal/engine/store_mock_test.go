package engine

import (
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/pkg/errors"
	"sync"
)

// storeMock keeps tracking rows in memory and records every script it runs
type storeMock struct {
	mu sync.Mutex

	tables  map[string][]database.Row
	scripts []string
	failOn  map[string]error
	locked  bool
	locks   int
	unlocks int
	calls   int
	lockErr error
}

var _ database.Store = (*storeMock)(nil)

func newStoreMock() *storeMock {
	return &storeMock{
		tables: make(map[string][]database.Row),
		failOn: make(map[string]error),
	}
}

func (s *storeMock) CreateTable(_ context.Context, table string, _ []database.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = nil
	}

	return nil
}

func (s *storeMock) ExecuteScript(_ context.Context, script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if err, ok := s.failOn[script]; ok {
		return err
	}

	s.scripts = append(s.scripts, script)

	return nil
}

func (s *storeMock) InsertRow(_ context.Context, table string, values []database.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	rows, ok := s.tables[table]
	if !ok {
		return errors.Errorf("no such table %s", table)
	}

	row := database.Row{"id": len(rows) + 1}
	for _, v := range values {
		row[v.Column] = v.Value
	}

	s.tables[table] = append(rows, row)

	return nil
}

func (s *storeMock) DeleteRows(_ context.Context, table string, filters ...database.Eq) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	var kept []database.Row
	for _, row := range s.tables[table] {
		if !matches(row, filters) {
			kept = append(kept, row)
		}
	}

	s.tables[table] = kept

	return nil
}

func (s *storeMock) QueryRows(
	_ context.Context,
	table string,
	_ []string,
	limit int,
	filters ...database.Eq,
) ([]database.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	var result []database.Row
	for _, row := range s.tables[table] {
		if limit > 0 && len(result) == limit {
			break
		}
		if matches(row, filters) {
			result = append(result, row)
		}
	}

	return result, nil
}

func (s *storeMock) Lock(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.lockErr != nil {
		return s.lockErr
	}

	s.locked = true
	s.locks++

	return nil
}

func (s *storeMock) Unlock(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.locked = false
	s.unlocks++

	return nil
}

func (s *storeMock) Close() error {
	return nil
}

func (s *storeMock) revisions(table string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []string
	for _, row := range s.tables[table] {
		result = append(result, row["revision"].(string))
	}

	return result
}

func matches(row database.Row, filters []database.Eq) bool {
	for _, f := range filters {
		if row[f.Column] != f.Value {
			return false
		}
	}

	return true
}
