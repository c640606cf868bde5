package sigil

import (
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Member is a metadata entity addressable by token.
type Member interface {
	Token() Token
}

// RowLoader materializes the entity backing one table row. It is called at
// most once per token for the lifetime of the store; returning an error
// leaves the row unmaterialized and surfaces the error to every waiter.
type RowLoader func(tok Token) (Member, error)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithResolver attaches the member-lookup service entities use to resolve
// their own cross-references.
func WithResolver(res Resolver) StoreOption {
	return func(s *Store) {
		s.res = res
	}
}

// Store owns the token-to-entity mapping for one metadata image.
//
// Entities backed by table rows materialize on first lookup and keep their
// identity: two lookups of the same token return the same entity. Entities
// never leave the store; their lifetime is the store's. Store is safe for
// concurrent use; concurrent first lookups of one token are deduplicated so
// the row loads at most once.
type Store struct {
	mu      sync.RWMutex
	members map[Token]Member
	group   singleflight.Group
	load    RowLoader
	res     Resolver
}

// NewStore creates a Store whose rows materialize through load. load may be
// nil for a store holding only freshly constructed entities.
func NewStore(load RowLoader, opts ...StoreOption) *Store {
	s := &Store{
		members: make(map[Token]Member),
		load:    load,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the attached member-lookup service, or nil.
func (s *Store) Resolver() Resolver { return s.res }

// Len returns the number of materialized entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Member returns the entity for tok, materializing it through the row loader
// on first lookup. The nil token and tokens with no backing row return
// ErrUnknownMember.
func (s *Store) Member(tok Token) (Member, error) {
	if tok.IsNil() {
		return nil, fmt.Errorf("%w: nil token", ErrUnknownMember)
	}
	s.mu.RLock()
	m, ok := s.members[tok]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := s.group.Do(strconv.FormatUint(uint64(tok.Uint32()), 16), func() (any, error) {
		s.mu.RLock()
		m, ok := s.members[tok]
		s.mu.RUnlock()
		if ok {
			return m, nil
		}
		if s.load == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMember, tok)
		}
		m, err := s.load(tok)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", tok, err)
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMember, tok)
		}
		s.put(m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Member), nil
}

func (s *Store) put(m Member) {
	s.mu.Lock()
	s.members[m.Token()] = m
	s.mu.Unlock()
}
