// Package memstore keeps every repository in process memory. It backs the
// service tests and local runs without Postgres.
package memstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

var ErrDuplicateID = errors.New("duplicate_id")

// Store is the shared state behind all in-memory repositories.
type Store struct {
	mu     sync.RWMutex
	seq    int64
	faults map[string]error
	writes map[string]int

	// Now stamps created/updated times. Tests may replace it.
	Now func() time.Time

	buildings     *table[models.Building]
	units         *table[models.Unit]
	components    *table[models.Component]
	tasks         *table[models.MaintenanceTask]
	providers     *table[models.ServiceProvider]
	requests      *table[models.ServiceRequest]
	expenses      *table[models.Expense]
	users         *table[models.User]
	notifications *table[models.Notification]
	contingency   *table[models.ContingencyDocument]
	audit         *table[models.AuditLog]

	rateLimits map[string]rateCounter
}

func New() *Store {
	return &Store{
		faults:        map[string]error{},
		writes:        map[string]int{},
		Now:           time.Now,
		buildings:     newTable[models.Building]("buildings"),
		units:         newTable[models.Unit]("units"),
		components:    newTable[models.Component]("components"),
		tasks:         newTable[models.MaintenanceTask]("tasks"),
		providers:     newTable[models.ServiceProvider]("providers"),
		requests:      newTable[models.ServiceRequest]("requests"),
		expenses:      newTable[models.Expense]("expenses"),
		users:         newTable[models.User]("users"),
		notifications: newTable[models.Notification]("notifications"),
		contingency:   newTable[models.ContingencyDocument]("contingency_documents"),
		audit:         newTable[models.AuditLog]("audit_logs"),
		rateLimits:    map[string]rateCounter{},
	}
}

// FailNext makes the next call of op ("<table>.<create|update|delete>")
// return err. The fault fires once.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// Writes reports how many create/update/delete calls hit a table.
func (s *Store) Writes(tableName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[tableName]
}

// must be called with mu held
func (s *Store) fault(tableName, op string) error {
	key := tableName + "." + op
	if err, ok := s.faults[key]; ok {
		delete(s.faults, key)
		return err
	}
	s.writes[tableName]++
	return nil
}

/* ------------------------------------------------------------------
   generic table
------------------------------------------------------------------ */

type row[T any] struct {
	seq int64
	v   T
}

type table[T any] struct {
	name string
	rows map[uuid.UUID]row[T]
}

func newTable[T any](name string) *table[T] {
	return &table[T]{name: name, rows: map[uuid.UUID]row[T]{}}
}

func insert[T any](s *Store, t *table[T], id uuid.UUID, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(t.name, "create"); err != nil {
		return err
	}
	if _, exists := t.rows[id]; exists {
		return fmt.Errorf("%s %s: %w", t.name, id, ErrDuplicateID)
	}
	s.seq++
	t.rows[id] = row[T]{seq: s.seq, v: v}
	return nil
}

func get[T any](s *Store, t *table[T], id uuid.UUID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := t.rows[id]
	return r.v, ok
}

// list returns matching rows in insertion order.
func list[T any](s *Store, t *table[T], keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs := make([]row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r.v) {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].seq < rs[j].seq })
	out := make([]T, len(rs))
	for i, r := range rs {
		out[i] = r.v
	}
	return out
}

// replace overwrites a row when check accepts the stored value. It returns
// a pgx-style command tag so versioned callers can count affected rows.
func replace[T any](s *Store, t *table[T], id uuid.UUID, check func(stored T) bool, v T) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(t.name, "update"); err != nil {
		return nil, err
	}
	r, ok := t.rows[id]
	if !ok || (check != nil && !check(r.v)) {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	t.rows[id] = row[T]{seq: r.seq, v: v}
	return pgconn.CommandTag("UPDATE 1"), nil
}

// remove is a no-op for missing ids.
func remove[T any](s *Store, t *table[T], id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(t.name, "delete"); err != nil {
		return err
	}
	delete(t.rows, id)
	return nil
}
