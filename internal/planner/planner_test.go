package planner

import (
	"testing"

	"github.com/dyluth/canvass/internal/logging"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/dyluth/canvass/pkg/compose"
	"github.com/dyluth/canvass/pkg/roster"
	"github.com/dyluth/canvass/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func register(rows ...[2]string) *route.Table {
	t := &route.Table{Columns: []string{route.ColumnStreet, route.ColumnAddress}}
	for _, row := range rows {
		t.Append(&route.Record{Street: row[0], Address: row[1]})
	}
	return t
}

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, err := roster.New([]roster.Canvasser{
		{Name: "Alice", Contact: "alice@example.org"},
		{Name: "Bob", Contact: "bob@example.org"},
		{Name: "Carol", Contact: "carol@example.org"},
	})
	require.NoError(t, err)
	return r
}

func observed() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewZap(zap.New(core)), logs
}

func TestRun_Automatic(t *testing.T) {
	table := register(
		[2]string{"Oak Rd", "2 Oak Rd"},
		[2]string{"Elm St", "7 Elm St"},
		[2]string{"Elm St", "4 Elm St"},
		[2]string{"Oak Rd", "1 Oak Rd"},
	)

	p, err := Run(table, testRoster(t), nil, Options{
		StreetOrder: route.StreetOrder{"Elm St", "Oak Rd"},
		Mode:        assign.ModeAutomatic,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Elm St|Odd", "Elm St|Even", "Oak Rd|Odd", "Oak Rd|Even"}, p.Chunks)
	assert.Equal(t, assign.ChunkMap{
		"Elm St|Odd":  "Alice",
		"Elm St|Even": "Bob",
		"Oak Rd|Odd":  "Carol",
		"Oak Rd|Even": "Alice",
	}, p.Assignments)
	assert.Empty(t, p.Unassigned())

	out, err := p.Export()
	require.NoError(t, err)
	require.Len(t, out.Rows, 4)
	assert.Equal(t, compose.Header(table.Columns), out.Header)
	// 7 Elm St, Alice, route order 1
	assert.Equal(t, []string{"Elm St", "7 Elm St", "Elm St|Odd", "1", "Alice", "alice@example.org"}, out.Rows[0][:6])
	assert.Equal(t, "Alice", out.Rows[3][4])

	s := p.Summary()
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 4, s.Chunks)
	assert.Zero(t, s.Unattributed)
}

func TestRun_RouteOnly(t *testing.T) {
	empty, err := roster.New(nil)
	require.NoError(t, err)

	t.Run("no canvassers exports route order only", func(t *testing.T) {
		logger, logs := observed()
		table := register(
			[2]string{"Elm St", "4 Elm St"},
			[2]string{"Elm St", "7 Elm St"},
		)

		p, err := Run(table, empty, nil, Options{
			StreetOrder: route.StreetOrder{"Elm St"},
			Mode:        assign.ModeAutomatic,
		}, logger)
		require.NoError(t, err)
		assert.True(t, p.RouteOnly)
		assert.Empty(t, p.Unassigned())
		assert.Equal(t, 1, logs.FilterMessage("no canvassers configured, planning route order only").Len())

		out, err := p.Export()
		require.NoError(t, err)
		require.Len(t, out.Rows, 2)
		assert.Equal(t, []string{"Elm St", "7 Elm St", "Elm St|Odd", "1", "", ""}, out.Rows[0][:6])
		assert.Equal(t, []string{"Elm St", "4 Elm St", "Elm St|Even", "2", "", ""}, out.Rows[1][:6])

		assert.Equal(t, 2, p.Summary().Unattributed)
		for _, st := range p.ChunkStats() {
			assert.Empty(t, st.Assignee)
		}
	})

	t.Run("manual mode still needs assignments", func(t *testing.T) {
		p, err := Run(register([2]string{"Elm St", "1 Elm St"}), empty, nil, Options{
			StreetOrder: route.StreetOrder{"Elm St"},
			Mode:        assign.ModeManual,
		}, nil)
		require.NoError(t, err)
		assert.False(t, p.RouteOnly)

		_, err = p.Export()
		assert.True(t, assign.IsIncompleteAssignment(err))
	})

	t.Run("pairing with only empty pairs has no units", func(t *testing.T) {
		pairing, err := roster.NewPairing(empty, 1, nil)
		require.NoError(t, err)

		_, err = Run(register([2]string{"Elm St", "1 Elm St"}), empty, pairing, Options{
			StreetOrder: route.StreetOrder{"Elm St"},
			Mode:        assign.ModeAutomatic,
		}, nil)
		assert.ErrorIs(t, err, assign.ErrNoUnits)
	})
}

func TestPlan_Sequence(t *testing.T) {
	t.Run("lenient policy logs missing streets", func(t *testing.T) {
		logger, logs := observed()
		p := New(register(
			[2]string{"Ghost Ln", "3 Ghost Ln"},
			[2]string{"Elm St", "1 Elm St"},
		), testRoster(t), nil, logger)

		require.NoError(t, p.Sequence(route.StreetOrder{"Elm St"}, route.PolicyLenient))
		require.NotNil(t, p.Missing)
		assert.Equal(t, []string{"Ghost Ln"}, p.Missing.Streets)
		assert.Equal(t, "Ghost Ln|Odd", p.Chunks[1])
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("strict policy fails", func(t *testing.T) {
		p := New(register([2]string{"Ghost Ln", "3 Ghost Ln"}), testRoster(t), nil, nil)

		err := p.Sequence(route.StreetOrder{"Elm St"}, route.PolicyStrict)
		require.Error(t, err)
		assert.True(t, route.IsOrderingIncomplete(err))
		assert.Nil(t, p.Chunks)
	})

	t.Run("resequencing keeps manual assignments valid", func(t *testing.T) {
		p := New(register(
			[2]string{"Elm St", "1 Elm St"},
			[2]string{"Oak Rd", "2 Oak Rd"},
		), testRoster(t), nil, nil)

		require.NoError(t, p.Sequence(route.StreetOrder{"Elm St", "Oak Rd"}, route.PolicyStrict))
		selections := map[string]string{"Elm St|Odd": "Bob", "Oak Rd|Even": "Carol"}
		require.NoError(t, p.Assign(assign.ModeManual, selections))

		require.NoError(t, p.Sequence(route.StreetOrder{"Oak Rd", "Elm St"}, route.PolicyStrict))
		require.NoError(t, p.Assign(assign.ModeManual, selections))
		assert.Empty(t, p.Stale)
		assert.Empty(t, p.Unassigned())
		assert.Equal(t, []string{"Oak Rd|Even", "Elm St|Odd"}, p.Chunks)
	})
}

func TestPlan_Manual(t *testing.T) {
	table := register(
		[2]string{"Elm St", "1 Elm St"},
		[2]string{"Elm St", "2 Elm St"},
		[2]string{"Elm St", "3 Elm St"},
	)
	order := route.StreetOrder{"Elm St"}

	t.Run("incomplete assignment blocks export", func(t *testing.T) {
		p, err := Run(table, testRoster(t), nil, Options{
			StreetOrder: order,
			Mode:        assign.ModeManual,
			Selections:  map[string]string{"Elm St|Odd": "Alice"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Elm St|Even"}, p.Unassigned())

		out, err := p.Export()
		assert.Nil(t, out)
		assert.True(t, assign.IsIncompleteAssignment(err))
	})

	t.Run("stale selections are reported and logged", func(t *testing.T) {
		logger, logs := observed()
		p, err := Run(table, testRoster(t), nil, Options{
			StreetOrder: order,
			Mode:        assign.ModeManual,
			Selections: map[string]string{
				"Elm St|Odd":  "Alice",
				"Elm St|Even": "Bob",
				"Gone Rd|Odd": "Carol",
			},
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, []string{"Gone Rd|Odd"}, p.Stale)
		assert.Equal(t, 1, logs.FilterMessage("ignoring assignment for chunk not in register").Len())

		_, err = p.Export()
		require.NoError(t, err)
	})

	t.Run("unknown assignee fails", func(t *testing.T) {
		_, err := Run(table, testRoster(t), nil, Options{
			StreetOrder: order,
			Mode:        assign.ModeManual,
			Selections:  map[string]string{"Elm St|Odd": "Zoe"},
		}, nil)
		assert.True(t, assign.IsUnknownAssignee(err))
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		p := New(table, testRoster(t), nil, nil)
		require.NoError(t, p.Sequence(order, route.PolicyLenient))
		assert.Error(t, p.Assign(assign.Mode("random"), nil))
	})
}

func TestPlan_EmptyPair(t *testing.T) {
	r := testRoster(t)
	pairing, err := roster.NewPairing(r, 2, []roster.PairSpec{
		{Name: "Pair1", Members: []string{"Alice", "Bob"}},
	})
	require.NoError(t, err)

	logger, logs := observed()
	p, err := Run(register(
		[2]string{"Elm St", "1 Elm St"},
		[2]string{"Elm St", "3 Elm St"},
		[2]string{"Elm St", "2 Elm St"},
	), r, pairing, Options{
		StreetOrder: route.StreetOrder{"Elm St"},
		Mode:        assign.ModeManual,
		Selections:  map[string]string{"Elm St|Odd": "Pair1", "Elm St|Even": "Pair 2"},
	}, logger)
	require.NoError(t, err)

	_, err = p.Export()
	require.NoError(t, err)
	require.Len(t, p.EmptyPairs, 1)
	assert.Equal(t, assign.EmptyPairWarning{Pair: "Pair 2", ChunkID: "Elm St|Even", Records: 1}, p.EmptyPairs[0])
	assert.Equal(t, 1, logs.FilterMessage("chunk assigned to a pair with no members").Len())

	// Pair members alternate by route position
	assert.Equal(t, "Alice", p.Table.Records[0].AssigneeName)
	assert.Equal(t, "Bob", p.Table.Records[1].AssigneeName)
	assert.Empty(t, p.Table.Records[2].AssigneeName)
	assert.Equal(t, 1, p.Summary().Unattributed)
}

func TestPlan_ChunkStats(t *testing.T) {
	p, err := Run(register(
		[2]string{"Elm St", "2 Elm St"},
		[2]string{"Elm St", "1 Elm St"},
		[2]string{"Elm St", "3 Elm St"},
		[2]string{"Elm St", "Flat A"},
	), testRoster(t), nil, Options{
		StreetOrder: route.StreetOrder{"Elm St"},
		Mode:        assign.ModeManual,
		Selections:  map[string]string{"Elm St|Odd": "Carol"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []ChunkStat{
		{ChunkID: "Elm St|Odd", Records: 2, First: 1, Assignee: "Carol"},
		{ChunkID: "Elm St|Even", Records: 1, First: 3, Assignee: assign.Unassigned},
		{ChunkID: "Elm St|Unknown", Records: 1, First: 4, Assignee: assign.Unassigned},
	}, p.ChunkStats())
}

func TestMergeSelections(t *testing.T) {
	base := map[string]string{"A|Odd": "Alice", "B|Odd": "Bob"}
	override := map[string]string{"B|Odd": "Carol", "C|Even": "Pair1"}

	merged := MergeSelections(base, override)
	assert.Equal(t, map[string]string{"A|Odd": "Alice", "B|Odd": "Carol", "C|Even": "Pair1"}, merged)
	assert.Equal(t, "Bob", base["B|Odd"])
	assert.Empty(t, MergeSelections(nil, nil))
}
