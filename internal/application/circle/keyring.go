package circle

import "sync"

// circleLocks serializes mutating operations per circle within this process.
// Joins and contributions for the same circle run one at a time; the database
// unique constraints remain the authority across processes.
type circleLocks struct {
	mu sync.Map // circle ID -> *sync.Mutex
}

func newCircleLocks() *circleLocks {
	return &circleLocks{}
}

// Lock acquires the mutex for the given key, creating it on first use.
// Returns the unlock function.
func (l *circleLocks) Lock(key string) func() {
	v, _ := l.mu.LoadOrStore(key, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
