package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wikimedia/wmcs-edits/internal/domain"
	"github.com/wikimedia/wmcs-edits/internal/storage"
)

// Change is one recorded edit.
type Change struct {
	Timestamp string
	IP        string
}

// Store is an in-memory implementation of the storage interfaces for testing.
type Store struct {
	mu sync.RWMutex

	changes     map[string][]Change // key: dbname
	openErrors  map[string]error
	queryErrors map[string]error
	opened      map[string]int
	closed      map[string]int
}

// Ensure Store implements storage.Opener.
var _ storage.Opener = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		changes:     make(map[string][]Change),
		openErrors:  make(map[string]error),
		queryErrors: make(map[string]error),
		opened:      make(map[string]int),
		closed:      make(map[string]int),
	}
}

// AddChanges appends changes to a wiki's log, creating the wiki if needed.
func (s *Store) AddChanges(dbname string, changes ...Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes[dbname] = append(s.changes[dbname], changes...)
}

// FailOpen makes opening dbname fail with err.
func (s *Store) FailOpen(dbname string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErrors[dbname] = err
}

// FailQuery makes reading dbname fail with err after the connection is open.
func (s *Store) FailQuery(dbname string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErrors[dbname] = err
}

// Opened returns how many times dbname was opened.
func (s *Store) Opened(dbname string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opened[dbname]
}

// Closed returns how many times a connection to dbname was closed.
func (s *Store) Closed(dbname string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed[dbname]
}

// Open returns the edit log of dbname. Unknown wikis fail like an unknown
// database would.
func (s *Store) Open(ctx context.Context, dbname string) (storage.EditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openErrors[dbname]; err != nil {
		return nil, err
	}
	if _, ok := s.changes[dbname]; !ok {
		return nil, fmt.Errorf("%w: unknown database %s", domain.ErrDataStore, dbname)
	}
	s.opened[dbname]++
	return &editLog{store: s, dbname: dbname}, nil
}

type editLog struct {
	store  *Store
	dbname string
}

func (l *editLog) Close() error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.closed[l.dbname]++
	return nil
}

// EachEditIP applies the same strict bounds as the SQL query. MediaWiki
// timestamps are fixed width, so string comparison orders them.
func (l *editLog) EachEditIP(ctx context.Context, start, end string, fn func(ip []byte)) error {
	l.store.mu.RLock()
	err := l.store.queryErrors[l.dbname]
	changes := make([]Change, len(l.store.changes[l.dbname]))
	copy(changes, l.store.changes[l.dbname])
	l.store.mu.RUnlock()

	if err != nil {
		return err
	}
	for _, c := range changes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrDataStore, err)
		}
		if c.Timestamp > start && c.Timestamp < end {
			fn([]byte(c.IP))
		}
	}
	return nil
}
