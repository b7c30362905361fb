package server

import (
	"encoding/json"

	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
)

// FrameMessage is pushed to every viewer after each frame.
type FrameMessage struct {
	Frame uint64      `json:"frame"`
	Items []FrameItem `json:"items"`
}

type FrameItem struct {
	Entity    models.EntityID    `json:"entity"`
	Component models.ComponentID `json:"component"`
	Mesh      string             `json:"mesh"`
	Material  string             `json:"material"`
	// Matrix is the column-major global transform.
	Matrix [16]float32 `json:"matrix"`
}

// Snapshot builds the message for the current frame.
func (s *Server) Snapshot() (FrameMessage, error) {
	msg := FrameMessage{Frame: s.source.Frame(), Items: []FrameItem{}}
	err := s.source.Draw(func(item scene.DrawItem) error {
		msg.Items = append(msg.Items, FrameItem{
			Entity:    item.Entity,
			Component: item.Component,
			Mesh:      item.Mesh,
			Material:  item.Material,
			Matrix:    item.Global.Matrix(),
		})
		return nil
	})
	return msg, err
}

func (s *Server) onFrame(bus.Event) error {
	if s.ClientCount() == 0 {
		return nil
	}
	msg, err := s.Snapshot()
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.broadcast(data)
	return nil
}

// broadcast never blocks the frame loop: a client that has not drained its
// buffer misses the frame.
func (s *Server) broadcast(data []byte) {
	s.broadcasts.Add(1)
	s.clients.Range(func(_, value any) bool {
		session := value.(*ClientSession)
		select {
		case session.send <- data:
		default:
			s.dropped.Add(1)
			s.logger.Debug("Viewer is slow, frame dropped", log.String("client_id", session.ID))
		}
		return true
	})
}
