package service

import (
	"testing"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *PackingSession {
	t.Helper()
	units := testUnits()
	return NewPackingSession("ORD-1", units, ReconcileDraft(units, nil, nil))
}

func boxNumbers(boxes []model.Box) []int {
	out := make([]int, len(boxes))
	for i, b := range boxes {
		out[i] = b.BoxNumber
	}
	return out
}

func members(boxes []model.Box) [][]string {
	out := make([][]string, len(boxes))
	for i, b := range boxes {
		out[i] = b.Members
	}
	return out
}

func TestNewPackingSession(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, "ORD-1", s.OrderID())
	assert.Equal(t, int64(1), s.Version())
	assert.Equal(t, []int{1, 2, 3}, boxNumbers(s.Boxes()))
	assert.Len(t, s.Units(), 3)
	assert.Empty(t, s.Connections())
}

func TestNewPackingSession_FillsAndPrunes(t *testing.T) {
	units := testUnits()
	g := NewConnectionGraph()
	g.AddEdge("u1", "ghost")
	g.AddEdge("u2", "u3")
	rec := Reconciliation{
		State: model.PackingStateMap{
			"u1":    {Quantity: 1, BoxNumber: 1},
			"ghost": {Quantity: 4, BoxNumber: 1},
		},
		Graph: g,
	}

	s := NewPackingSession("ORD-1", units, rec)

	state := s.State()
	assert.NotContains(t, state, "ghost")
	assert.Equal(t, 1, state["u1"].Quantity)
	assert.Equal(t, 3, state["u2"].Quantity)
	assert.Equal(t, []model.Connection{{ID: "u2->u3", From: "u2", To: "u3"}}, s.Connections())
	assert.Equal(t, [][]string{{"u1"}, {"u2", "u3"}}, members(s.Boxes()))
}

func TestPackingSession_ConnectAndDisconnectRenumbers(t *testing.T) {
	s := newTestSession(t)

	conn, ok, err := s.Connect("u1", "u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, boxNumbers(s.Boxes()))
	assert.Equal(t, [][]string{{"u1", "u2"}, {"u3"}}, members(s.Boxes()))
	assert.Equal(t, 1, s.State()["u2"].BoxNumber)
	assert.Equal(t, 2, s.State()["u3"].BoxNumber)

	assert.True(t, s.Disconnect(conn.ID))

	boxes := s.Boxes()
	assert.Equal(t, []int{1, 2, 3}, boxNumbers(boxes))
	assert.Equal(t, [][]string{{"u1"}, {"u2"}, {"u3"}}, members(boxes))
	state := s.State()
	assert.Equal(t, 1, state["u1"].BoxNumber)
	assert.Equal(t, 2, state["u2"].BoxNumber)
	assert.Equal(t, 3, state["u3"].BoxNumber)
}

func TestPackingSession_MergeWithLaterBoxRenumbersWithoutGaps(t *testing.T) {
	s := newTestSession(t)

	_, _, err := s.Connect("u3", "u1")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, boxNumbers(s.Boxes()))
	assert.Equal(t, [][]string{{"u1", "u3"}, {"u2"}}, members(s.Boxes()))
}

func TestPackingSession_Connect(t *testing.T) {
	t.Run("unknown unit", func(t *testing.T) {
		s := newTestSession(t)
		_, _, err := s.Connect("u1", "nope")
		assert.ErrorIs(t, err, ErrUnitNotFound)
	})

	t.Run("self edge does not change version", func(t *testing.T) {
		s := newTestSession(t)
		v := s.Version()
		_, ok, err := s.Connect("u1", "u1")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, v, s.Version())
	})

	t.Run("duplicate edge returns existing", func(t *testing.T) {
		s := newTestSession(t)
		first, _, _ := s.Connect("u1", "u2")
		v := s.Version()
		again, ok, err := s.Connect("u2", "u1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, first, again)
		assert.Equal(t, v, s.Version())
		assert.Len(t, s.Connections(), 1)
	})
}

func TestPackingSession_DisconnectUnknownIsNoop(t *testing.T) {
	s := newTestSession(t)
	v := s.Version()

	assert.False(t, s.Disconnect("u1->u9"))
	assert.Equal(t, v, s.Version())
}

func TestPackingSession_SetQuantityClamps(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want int
	}{
		{name: "above unit quantity", qty: 99, want: 5},
		{name: "below zero", qty: -2, want: 0},
		{name: "in range", qty: 3, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)

			got, err := s.SetQuantity("u1", tt.qty)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, s.State()["u1"].Quantity)
		})
	}

	t.Run("unknown unit", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.SetQuantity("missing", 1)
		assert.ErrorIs(t, err, ErrUnitNotFound)
	})
}

func TestPackingSession_SetQuantityZeroKeepsBox(t *testing.T) {
	s := newTestSession(t)
	_, _, err := s.Connect("u1", "u2")
	require.NoError(t, err)

	_, err = s.SetQuantity("u2", 0)
	require.NoError(t, err)

	boxes := s.Boxes()
	require.Len(t, boxes, 2)
	assert.Equal(t, []model.BoxItem{{UnitID: "u1", CatalogNumber: "X1", Quantity: 5}}, boxes[0].Items)
	assert.Equal(t, []string{"u1", "u2"}, boxes[0].Members)
	assert.Equal(t, 1, s.State()["u2"].BoxNumber)
}

func TestPackingSession_SetBoxNumber(t *testing.T) {
	t.Run("moves unit into existing box", func(t *testing.T) {
		s := newTestSession(t)

		require.NoError(t, s.SetBoxNumber("u3", 1))

		assert.Equal(t, [][]string{{"u1", "u3"}, {"u2"}}, members(s.Boxes()))
		assert.Equal(t, 1, s.State()["u3"].BoxNumber)
	})

	t.Run("leaving a box keeps the other members together", func(t *testing.T) {
		s := newTestSession(t)
		_, _, _ = s.Connect("u1", "u2")
		_, _, _ = s.Connect("u2", "u3")

		require.NoError(t, s.SetBoxNumber("u2", 5))

		assert.Equal(t, [][]string{{"u1", "u3"}, {"u2"}}, members(s.Boxes()))
		assert.Equal(t, 2, s.State()["u2"].BoxNumber)
	})

	t.Run("same box is a no-op", func(t *testing.T) {
		s := newTestSession(t)
		v := s.Version()

		require.NoError(t, s.SetBoxNumber("u2", 2))

		assert.Equal(t, v, s.Version())
	})

	t.Run("rejects box number below one", func(t *testing.T) {
		s := newTestSession(t)
		assert.ErrorIs(t, s.SetBoxNumber("u1", 0), ErrInvalidBoxNumber)
	})

	t.Run("unknown unit", func(t *testing.T) {
		s := newTestSession(t)
		assert.ErrorIs(t, s.SetBoxNumber("missing", 1), ErrUnitNotFound)
	})
}

func TestPackingSession_Reset(t *testing.T) {
	s := newTestSession(t)
	_, _, _ = s.Connect("u1", "u2")
	_, _ = s.SetQuantity("u3", 0)

	s.Reset()

	assert.Empty(t, s.Connections())
	assert.Equal(t, InitialPackingState(testUnits()), s.State())
	assert.Equal(t, []int{1, 2, 3}, boxNumbers(s.Boxes()))
}

func TestPackingSession_SnapshotIsACopy(t *testing.T) {
	s := newTestSession(t)
	snap := s.Snapshot()

	snap.Boxes[0].Items[0].Quantity = 42
	snap.State["u1"] = model.PackingState{Quantity: 42}

	assert.Equal(t, 5, s.Boxes()[0].Items[0].Quantity)
	assert.Equal(t, 5, s.State()["u1"].Quantity)
}
