package service

import (
	"errors"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

var (
	// ErrUnitNotFound is returned when a unit id is not part of the session.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrInvalidBoxNumber is returned when a box number below 1 is requested.
	ErrInvalidBoxNumber = errors.New("box number must be at least 1")
)

// PackingSession is the explicit state of one order being packed: its units,
// their packing state and the operator-drawn connections. Every mutation
// re-derives the box list before returning, so Boxes never lags behind the
// state. A session is not safe for concurrent use.
type PackingSession struct {
	orderID   string
	units     []model.PackableUnit
	unitIndex map[string]int
	state     model.PackingStateMap
	graph     *ConnectionGraph
	boxes     []model.Box
	version   int64
}

// SessionSnapshot is a read-only copy of a session.
type SessionSnapshot struct {
	OrderID     string                `json:"order_id"`
	Version     int64                 `json:"version"`
	Units       []model.PackableUnit  `json:"units"`
	State       model.PackingStateMap `json:"packing_state"`
	Connections []model.Connection    `json:"connections"`
	Boxes       []model.Box           `json:"boxes"`
}

// NewPackingSession builds a session from split units and a reconciled
// draft. Connections referencing unknown units are dropped.
func NewPackingSession(orderID string, units []model.PackableUnit, rec Reconciliation) *PackingSession {
	s := &PackingSession{
		orderID:   orderID,
		units:     units,
		unitIndex: make(map[string]int, len(units)),
		state:     rec.State,
		graph:     rec.Graph,
	}
	for i, unit := range units {
		s.unitIndex[unit.UnitID] = i
	}
	if s.state == nil {
		s.state = InitialPackingState(units)
	}
	if s.graph == nil {
		s.graph = NewConnectionGraph()
	}
	valid := make(map[string]struct{}, len(units))
	for _, unit := range units {
		valid[unit.UnitID] = struct{}{}
		if _, ok := s.state[unit.UnitID]; !ok {
			s.state[unit.UnitID] = model.PackingState{Quantity: unit.UnitQuantity, BoxNumber: s.unitIndex[unit.UnitID] + 1}
		}
	}
	for id := range s.state {
		if _, ok := valid[id]; !ok {
			delete(s.state, id)
		}
	}
	s.graph.Prune(valid)
	s.refresh()
	return s
}

// OrderID returns the order the session belongs to.
func (s *PackingSession) OrderID() string {
	return s.orderID
}

// Version increases by one on every applied change.
func (s *PackingSession) Version() int64 {
	return s.version
}

// Units returns the packable units in their natural order.
func (s *PackingSession) Units() []model.PackableUnit {
	out := make([]model.PackableUnit, len(s.units))
	copy(out, s.units)
	return out
}

// State returns a copy of the per-unit packing state.
func (s *PackingSession) State() model.PackingStateMap {
	return s.state.Clone()
}

// Connections returns the current edges in creation order.
func (s *PackingSession) Connections() []model.Connection {
	return s.graph.Edges()
}

// Boxes returns a copy of the derived box list.
func (s *PackingSession) Boxes() []model.Box {
	return cloneBoxes(s.boxes)
}

// Snapshot returns a consistent copy of the whole session.
func (s *PackingSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		OrderID:     s.orderID,
		Version:     s.version,
		Units:       s.Units(),
		State:       s.State(),
		Connections: s.Connections(),
		Boxes:       s.Boxes(),
	}
}

// SetQuantity stores the packed quantity of a unit, clamped to
// [0, unitQuantity], and returns the stored value.
func (s *PackingSession) SetQuantity(unitID string, qty int) (int, error) {
	idx, ok := s.unitIndex[unitID]
	if !ok {
		return 0, ErrUnitNotFound
	}
	st := s.state[unitID]
	st.Quantity = ClampQuantity(qty, s.units[idx].UnitQuantity)
	s.state[unitID] = st
	s.refresh()
	return st.Quantity, nil
}

// SetBoxNumber moves a unit into box n. The unit leaves its current box
// (the remaining members stay together) and is linked to the first member
// of box n. A number past the last box gives the unit a box of its own.
// Box numbers are re-derived afterwards, so the unit's final number may
// differ from n when it opens a new box.
func (s *PackingSession) SetBoxNumber(unitID string, n int) error {
	if _, ok := s.unitIndex[unitID]; !ok {
		return ErrUnitNotFound
	}
	if n < 1 {
		return ErrInvalidBoxNumber
	}
	if s.state[unitID].BoxNumber == n {
		return nil
	}

	var target string
	for _, box := range s.boxes {
		if box.BoxNumber != n {
			continue
		}
		for _, id := range box.Members {
			if id != unitID {
				target = id
				break
			}
		}
	}

	s.detach(unitID)
	if target != "" {
		s.graph.AddEdge(unitID, target)
	}
	s.refresh()
	return nil
}

// detach removes every edge of the unit while keeping the rest of its
// current box connected.
func (s *PackingSession) detach(unitID string) {
	var others []string
	for _, box := range s.boxes {
		if !containsID(box.Members, unitID) {
			continue
		}
		for _, id := range box.Members {
			if id != unitID {
				others = append(others, id)
			}
		}
	}
	if s.graph.RemoveEdgesOf(unitID) == 0 {
		return
	}
	for i := 1; i < len(others); i++ {
		s.graph.AddEdge(others[i-1], others[i])
	}
}

// Connect links two units into the same box. Linking a unit to itself is a
// no-op and reports false; linking an already linked pair returns the
// existing connection.
func (s *PackingSession) Connect(from, to string) (model.Connection, bool, error) {
	if _, ok := s.unitIndex[from]; !ok {
		return model.Connection{}, false, ErrUnitNotFound
	}
	if _, ok := s.unitIndex[to]; !ok {
		return model.Connection{}, false, ErrUnitNotFound
	}
	before := s.graph.Len()
	conn, ok := s.graph.AddEdge(from, to)
	if ok && s.graph.Len() != before {
		s.refresh()
	}
	return conn, ok, nil
}

// Disconnect removes a connection. Unknown ids are ignored and report false.
func (s *PackingSession) Disconnect(connectionID string) bool {
	if !s.graph.RemoveEdge(connectionID) {
		return false
	}
	s.refresh()
	return true
}

// Reset drops all edits and restores the default one-unit-per-box state.
func (s *PackingSession) Reset() {
	s.state = InitialPackingState(s.units)
	s.graph = NewConnectionGraph()
	s.refresh()
}

func (s *PackingSession) refresh() {
	s.boxes = AssignBoxes(s.units, s.state, s.graph)
	SyncBoxNumbers(s.state, s.boxes)
	s.version++
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func cloneBoxes(boxes []model.Box) []model.Box {
	out := make([]model.Box, len(boxes))
	for i, box := range boxes {
		out[i] = box
		out[i].Items = make([]model.BoxItem, len(box.Items))
		copy(out[i].Items, box.Items)
		out[i].Members = make([]string, len(box.Members))
		copy(out[i].Members, box.Members)
	}
	return out
}
