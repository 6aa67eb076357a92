// Package testutil provides in-memory repositories that honour the same
// contracts as the gorm implementations, for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// Store is an in-memory database. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.Mutex

	customers   map[uuid.UUID]entity.Customer
	companies   map[uuid.UUID]entity.Company
	invoices    map[uuid.UUID]entity.Invoice
	posCompany  map[uuid.UUID]entity.PosCompany
	terminals   map[uuid.UUID]entity.PosTerminal
	rates       map[uuid.UUID]entity.CustomerRate // by customer id
	sales       map[uuid.UUID]entity.PosSale
	users       map[uuid.UUID]entity.SystemUser
	resetTokens map[uuid.UUID]entity.PasswordResetToken
	idemKeys    map[string]entity.IdempotencyKey

	// seq orders rows by insertion like created_at does
	seq   int64
	order map[uuid.UUID]int64

	// Now stamps created_at/updated_at
	Now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		customers:   map[uuid.UUID]entity.Customer{},
		companies:   map[uuid.UUID]entity.Company{},
		invoices:    map[uuid.UUID]entity.Invoice{},
		posCompany:  map[uuid.UUID]entity.PosCompany{},
		terminals:   map[uuid.UUID]entity.PosTerminal{},
		rates:       map[uuid.UUID]entity.CustomerRate{},
		sales:       map[uuid.UUID]entity.PosSale{},
		users:       map[uuid.UUID]entity.SystemUser{},
		resetTokens: map[uuid.UUID]entity.PasswordResetToken{},
		idemKeys:    map[string]entity.IdempotencyKey{},
		order:       map[uuid.UUID]int64{},
		Now:         time.Now,
	}
}

func (s *Store) stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := s.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
	s.seq++
	s.order[*id] = s.seq
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type snapshot struct {
	customers   map[uuid.UUID]entity.Customer
	companies   map[uuid.UUID]entity.Company
	invoices    map[uuid.UUID]entity.Invoice
	posCompany  map[uuid.UUID]entity.PosCompany
	terminals   map[uuid.UUID]entity.PosTerminal
	rates       map[uuid.UUID]entity.CustomerRate
	sales       map[uuid.UUID]entity.PosSale
	users       map[uuid.UUID]entity.SystemUser
	resetTokens map[uuid.UUID]entity.PasswordResetToken
	idemKeys    map[string]entity.IdempotencyKey
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		customers:   copyMap(s.customers),
		companies:   copyMap(s.companies),
		invoices:    copyMap(s.invoices),
		posCompany:  copyMap(s.posCompany),
		terminals:   copyMap(s.terminals),
		rates:       copyMap(s.rates),
		sales:       copyMap(s.sales),
		users:       copyMap(s.users),
		resetTokens: copyMap(s.resetTokens),
		idemKeys:    copyMap(s.idemKeys),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = snap.customers
	s.companies = snap.companies
	s.invoices = snap.invoices
	s.posCompany = snap.posCompany
	s.terminals = snap.terminals
	s.rates = snap.rates
	s.sales = snap.sales
	s.users = snap.users
	s.resetTokens = snap.resetTokens
	s.idemKeys = snap.idemKeys
}

// Transactor rolls the whole store back when fn fails
func (s *Store) Transactor() repository.Transactor {
	return storeTransactor{s}
}

type storeTransactor struct{ s *Store }

type inTxKey struct{}

func (t storeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func paginate[T any](rows []T, params *pagination.PaginationParams) []T {
	params.Validate()
	start := params.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func conflict(msg string) error {
	return apperror.NewConflictError(msg)
}

// before orders by insertion sequence for rows that compare equal
func (s *Store) before(a, b uuid.UUID) bool {
	return s.order[a] < s.order[b]
}

func sortByName[T any](rows []T, name func(T) string, id func(T) uuid.UUID, s *Store) {
	sort.SliceStable(rows, func(i, j int) bool {
		ni, nj := name(rows[i]), name(rows[j])
		if ni != nj {
			return ni < nj
		}
		return s.before(id(rows[i]), id(rows[j]))
	})
}
