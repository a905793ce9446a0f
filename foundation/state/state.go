// Package state tracks which optional services are still healthy.
package state

import "sync"

type Service int

const (
	Speech Service = iota
	EmotionLog
	Publisher
	Translation
)

func (s Service) String() string {
	switch s {
	case Speech:
		return "speech"
	case EmotionLog:
		return "emotionLog"
	case Publisher:
		return "publisher"
	case Translation:
		return "translation"
	}
	return "unknown"
}

// State is a set of on/off switches, one per Service. A service starts
// enabled unless it was not configured.
type State struct {
	sync.RWMutex

	services map[Service]bool
}

func NewState(enabled ...Service) *State {
	s := State{
		services: make(map[Service]bool, len(enabled)),
	}
	for _, svc := range enabled {
		s.services[svc] = true
	}
	return &s
}

func (s *State) Get(svc Service) bool {
	s.RLock()
	defer s.RUnlock()
	{
		return s.services[svc]
	}
}

func (s *State) Set(svc Service, state bool) {
	s.Lock()
	defer s.Unlock()
	{
		s.services[svc] = state
	}
}
