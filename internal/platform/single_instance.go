package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInstanceAlreadyRunning indicates another process already owns the app instance lock.
var ErrInstanceAlreadyRunning = errors.New("instance already running")

// ErrInstanceLockUnsupported indicates the current platform has no lock backend implementation.
var ErrInstanceLockUnsupported = errors.New("instance lock unsupported")

// InstanceRunningError carries the holder's process id when the backend records one.
// It matches ErrInstanceAlreadyRunning with errors.Is.
type InstanceRunningError struct {
	PID int
}

func (e *InstanceRunningError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("%s (pid %d)", ErrInstanceAlreadyRunning, e.PID)
	}

	return ErrInstanceAlreadyRunning.Error()
}

func (e *InstanceRunningError) Is(target error) bool {
	return target == ErrInstanceAlreadyRunning
}

// InstanceLock represents an acquired single-instance lock.
type InstanceLock interface {
	Release() error
}

// AcquireInstanceLock takes the per-user lock for appID. A second GUI started by
// the same user gets an *InstanceRunningError.
func AcquireInstanceLock(appID string) (InstanceLock, error) {
	return acquireInstanceLock(lockComponent(appID, "app"))
}

func lockComponent(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	normalized := strings.Map(func(r rune) rune {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, raw)
	normalized = strings.Trim(normalized, "_-.")
	if normalized == "" {
		return fallback
	}

	return normalized
}
