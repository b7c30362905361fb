package server

import (
	"encoding/json"
	"net/http"
	"sort"
)

// HealthStatus is served on /healthz.
type HealthStatus struct {
	Status        string    `json:"status"`
	Frame         uint64    `json:"frame"`
	Clients       int64     `json:"clients"`
	Broadcasts    uint64    `json:"broadcasts"`
	DroppedFrames uint64    `json:"dropped_frames"`
	DroppedInput  uint64    `json:"dropped_input"`
	Bus           BusHealth `json:"bus"`
}

// BusHealth summarises the event bus. Counters only move while an observer
// is registered on the bus; the engine registers one.
type BusHealth struct {
	Published   uint64   `json:"published"`
	Errors      uint64   `json:"errors"`
	Subscribers uint64   `json:"subscribers"`
	Topics      []string `json:"topics"`
}

func (s *Server) busHealth() BusHealth {
	m := s.bus.GetMetrics()
	h := BusHealth{
		Published:   m.Published,
		Errors:      m.Errors,
		Subscribers: m.SubscribersActive,
	}
	for _, info := range s.bus.GetTopics() {
		if info.Subs > 0 {
			h.Topics = append(h.Topics, info.Name)
		}
	}
	sort.Strings(h.Topics)
	return h
}

func (s *Server) Health() HealthStatus {
	return HealthStatus{
		Status:        "ok",
		Frame:         s.source.Frame(),
		Clients:       s.ClientCount(),
		Broadcasts:    s.broadcasts.Load(),
		DroppedFrames: s.dropped.Load(),
		DroppedInput:  s.source.Dropped(),
		Bus:           s.busHealth(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Health()); err != nil {
		s.logger.Debug("Health response failed")
	}
}
