package editor

type SessionMetrics struct {
	Frame   uint64 `json:"frame"`
	Clients int    `json:"clients"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`

	OpsApplied  uint64 `json:"ops_applied"`
	OpsRejected uint64 `json:"ops_rejected"`
	MeshesBuilt uint64 `json:"meshes_built"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Picks int `json:"picks"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// Metrics returns the snapshot published at the end of the last frame.
// Safe to call from any goroutine.
func (s *Session) Metrics() SessionMetrics {
	if s == nil {
		return SessionMetrics{}
	}
	m, _ := s.metrics.Load().(SessionMetrics)
	return m
}

func (s *Session) publishMetrics(frame uint64, stepMS float64) {
	s.totals.Frame = frame
	s.totals.Clients = len(s.clients)
	s.totals.StepMS = stepMS
	s.totals.QueueDepths = QueueDepths{
		Inbox: len(s.inbox),
		Picks: len(s.picks),
		Join:  len(s.join),
		Leave: len(s.leave),
	}
	s.metrics.Store(s.totals)
}
