package notifications

import "sync"

// SwitchableSender forwards to a target that can be attached after the
// producers were built. Payloads sent with no target are dropped.
type SwitchableSender struct {
	mu     sync.RWMutex
	target Sender
}

func NewSwitchableSender(target Sender) *SwitchableSender {
	return &SwitchableSender{target: target}
}

func (s *SwitchableSender) Set(target Sender) {
	s.mu.Lock()
	s.target = target
	s.mu.Unlock()
}

func (s *SwitchableSender) Send(payload Payload) {
	s.mu.RLock()
	target := s.target
	s.mu.RUnlock()
	if target == nil {
		return
	}
	target.Send(payload)
}
