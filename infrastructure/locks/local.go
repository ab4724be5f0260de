package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "template-backend/pkg/errors"
)

// CodeLockHeld is the error code reported when another holder has the lock
const CodeLockHeld = "LOCK_HELD"

func heldError(resource string) error {
	return apperrors.NewConflictError(fmt.Sprintf("%s is already running", resource)).WithCode(CodeLockHeld)
}

// LocalLocker holds locks in process memory
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]localLock
	seq  uint64
	now  func() time.Time
}

type localLock struct {
	id        uint64
	expiresAt time.Time
}

// NewLocalLocker creates an empty locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLock), now: time.Now}
}

// Acquire takes the lock for resource unless an unexpired holder exists
func (l *LocalLocker) Acquire(ctx context.Context, resource string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.held[resource]; ok && now.Before(cur.expiresAt) {
		return nil, heldError(resource)
	}

	l.seq++
	id := l.seq
	l.held[resource] = localLock{id: id, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[resource]; ok && cur.id == id {
			delete(l.held, resource)
		}
		return nil
	}, nil
}
