package service

import "sync"

// AccountLocks serializes engine operations per account. Each engine call is
// a read-decide-write against one account; holding the account's lock across
// the whole call means a double-tapped button cannot interleave two
// operations on the same account. All engines must share one instance.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[int64]*sync.Mutex)}
}

func (a *AccountLocks) lock(userID int64) func() {
	a.mu.Lock()
	l, ok := a.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[userID] = l
	}
	a.mu.Unlock()
	l.Lock()
	return l.Unlock
}
