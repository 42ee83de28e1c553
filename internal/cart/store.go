package cart

import "sync"

// Store holds one cart per cashier. Carts are ephemeral; a restart empties
// them, which matches their role as in-progress, uncommitted work.
type Store struct {
	mu    sync.Mutex
	carts map[int64]*Cart
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{carts: make(map[int64]*Cart)}
}

// With runs fn against the cashier's cart under the store lock, creating the
// cart on first use. Concurrent requests for the same cashier serialize here.
func (s *Store) With(cashierID int64, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cashierID]
	if !ok {
		c = &Cart{}
		s.carts[cashierID] = c
	}
	return fn(c)
}

// Drop removes the cashier's cart.
func (s *Store) Drop(cashierID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cashierID)
}
