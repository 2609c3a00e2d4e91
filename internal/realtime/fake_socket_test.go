package realtime_test

import (
	"encoding/json"
	"sync"

	"projectroom/internal/realtime"
)

type fakeSocket struct {
	id string

	mu        sync.Mutex
	frames    []realtime.ServerFrame
	pings     int
	closed    bool
	closeCode int
	sendErr   error
}

func newFakeSocket(id string) *fakeSocket {
	return &fakeSocket{id: id}
}

func (s *fakeSocket) ID() string { return s.id }

func (s *fakeSocket) Send(frame realtime.ServerFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	if s.closed {
		return realtime.ErrSocketClosed
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *fakeSocket) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pings++
	return nil
}

func (s *fakeSocket) Close(code int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.closeCode = code
	}
	return nil
}

func (s *fakeSocket) Frames() []realtime.ServerFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]realtime.ServerFrame(nil), s.frames...)
}

func (s *fakeSocket) Last() realtime.ServerFrame {
	frames := s.Frames()
	if len(frames) == 0 {
		return nil
	}
	return frames[len(frames)-1]
}

func (s *fakeSocket) Reset() {
	s.mu.Lock()
	s.frames = nil
	s.mu.Unlock()
}

func (s *fakeSocket) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func encode(frame realtime.ServerFrame) string {
	data, _ := json.Marshal(frame)
	return string(data)
}
