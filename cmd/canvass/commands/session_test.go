package commands

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/canvass/internal/csvio"
	"github.com/dyluth/canvass/internal/session"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pairedConfig = `version: "1.0"
street_order: [Elm St, Oak Rd]
canvassers:
  - {name: Alice, email: alice@example.org}
  - {name: Bob, email: bob@example.org}
  - {name: Carol, email: carol@example.org}
pairing:
  pairs:
    - name: Pair 1
      members: [Alice, Bob]
assignment:
  mode: manual
`

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestSessionWorkflow(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := "redis://" + mr.Addr()

	dir := t.TempDir()
	register := writeFile(t, dir, "register.csv", testRegister)
	cfg := writeFile(t, dir, "canvass.yml", pairedConfig)
	output := filepath.Join(dir, "plan.csv")

	stdout, _, err := run(t, "session", "new", "--input", register, "--redis-url", redis)
	require.NoError(t, err)
	id := uuidPattern.FindString(stdout)
	require.NotEmpty(t, id, stdout)
	short := id[:8]

	assignTo := func(chunk, assignee string) error {
		_, _, err := run(t, "assign", chunk, assignee, "--session", short, "--config", cfg, "--redis-url", redis)
		return err
	}

	t.Run("rejects paired canvasser and unknown names", func(t *testing.T) {
		err := assignTo("Elm St|Odd", "Alice")
		require.Error(t, err)
		assert.Equal(t, "unknown assignee", err.Error())

		assert.Error(t, assignTo("Elm St|Odd", "Zoe"))
		assert.Equal(t, "invalid chunk ID", assignTo("Elm St", "Carol").Error())
	})

	t.Run("partial assignment blocks export", func(t *testing.T) {
		require.NoError(t, assignTo("Elm St|Odd", "Pair 1"))
		require.NoError(t, assignTo("Elm St|Even", "Carol"))

		stdout, _, err := run(t, "chunks", "--input", register, "--config", cfg, "--session", short, "--redis-url", redis)
		require.NoError(t, err)
		assert.Contains(t, stdout, "3 chunk(s) still unassigned")

		_, _, err = run(t, "plan", "--input", register, "--config", cfg, "--session", short,
			"--redis-url", redis, "--output", output)
		require.Error(t, err)
		assert.Equal(t, "assignment incomplete", err.Error())
		assert.NoFileExists(t, output)
	})

	t.Run("complete assignment exports", func(t *testing.T) {
		require.NoError(t, assignTo("Oak Rd|Odd", "Carol"))
		require.NoError(t, assignTo("Oak Rd|Even", "Pair 1"))
		require.NoError(t, assignTo("Oak Rd|Unknown", "Carol"))

		// Stored for a chunk the register does not have
		_, _, err := run(t, "assign", "Ash Way|Odd", "Carol", "--session", short, "--config", cfg,
			"--redis-url", redis, "--input", register)
		require.NoError(t, err)

		stdout, stderr, err := run(t, "plan", "--input", register, "--config", cfg, "--session", short,
			"--redis-url", redis, "--output", output)
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, "Ignoring assignments for chunks not in this register")
		assert.Contains(t, stdout, "    - Ash Way|Odd\n")

		table, err := csvio.ReadPlanFile(output)
		require.NoError(t, err)
		var names []string
		for _, r := range table.Records {
			names = append(names, r.AssigneeName)
		}
		// Pair members alternate by route position
		assert.Equal(t, []string{"Alice", "Bob", "Carol", "Carol", "Carol", "Bob", "Carol"}, names)
	})

	t.Run("street order change keeps assignments", func(t *testing.T) {
		reordered := writeFile(t, dir, "reordered.yml",
			strings.Replace(pairedConfig, "[Elm St, Oak Rd]", "[Oak Rd, Elm St]", 1))
		_, stderr, err := run(t, "plan", "--input", register, "--config", reordered, "--session", short,
			"--redis-url", redis, "--output", output)
		require.NoError(t, err, stderr)

		table, err := csvio.ReadPlanFile(output)
		require.NoError(t, err)
		assert.Equal(t, "1 Oak Rd", table.Records[0].Address)
		assert.Equal(t, "Carol", table.Records[0].AssigneeName)
	})

	t.Run("show and clear", func(t *testing.T) {
		stdout, _, err := run(t, "session", "show", short, "--redis-url", redis)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Session "+id)
		assert.Contains(t, stdout, "Register: "+register)
		assert.Contains(t, stdout, "Oak Rd|Unknown")

		require.NoError(t, assignTo("Oak Rd|Unknown", "Unassigned"))
		stored, err := mr.HKeys(session.AssignmentsKey(id))
		require.NoError(t, err)
		assert.NotContains(t, stored, "Oak Rd|Unknown")

		stdout, _, err = run(t, "session", "show", short, "--redis-url", redis, "--format", "jsonl")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"id":"`+id+`"`)
		assert.Contains(t, stdout, `"Elm St|Odd":"Pair 1"`)
	})

	t.Run("delete", func(t *testing.T) {
		_, _, err := run(t, "session", "delete", short, "--redis-url", redis)
		require.NoError(t, err)
		assert.False(t, mr.Exists(session.SessionKey(id)))

		_, stderr, err := run(t, "session", "show", short, "--redis-url", redis)
		require.Error(t, err)
		assert.Equal(t, "session not found", err.Error())
		assert.Contains(t, stderr, "canvass session new")
	})
}

func TestSession_Errors(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := "redis://" + mr.Addr()

	t.Run("short prefix", func(t *testing.T) {
		_, _, err := run(t, "session", "show", "abc", "--redis-url", redis)
		require.Error(t, err)
		assert.Equal(t, "failed to resolve session", err.Error())
	})

	t.Run("assign requires session flag", func(t *testing.T) {
		_, _, err := run(t, "assign", "Elm St|Odd", "Carol")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"session" not set`)
	})

	t.Run("unreachable store", func(t *testing.T) {
		addr := mr.Addr()
		mr.Close()
		_, stderr, err := run(t, "session", "new", "--redis-url", "redis://"+addr)
		require.Error(t, err)
		assert.Equal(t, "cannot reach session store", err.Error())
		assert.Contains(t, stderr, "URL: redis://"+addr)
	})
}

func TestSessionList(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := "redis://" + mr.Addr()

	stdout, _, err := run(t, "session", "list", "--redis-url", redis)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No sessions found")

	for _, register := range []string{"north.csv", "south.csv"} {
		_, _, err := run(t, "session", "new", "--input", register, "--redis-url", redis)
		require.NoError(t, err)
	}

	stdout, _, err = run(t, "session", "list", "--since", "1h", "--redis-url", redis)
	require.NoError(t, err)
	assert.Contains(t, stdout, "north.csv")
	assert.Contains(t, stdout, "south.csv")
	assert.Contains(t, stdout, "2 sessions")

	stdout, _, err = run(t, "session", "list", "--until", "1h", "--format", "jsonl", "--redis-url", redis)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	stdout, _, err = run(t, "session", "list", "--format", "jsonl", "--redis-url", redis)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"assignments":0`)

	_, _, err = run(t, "session", "list", "--since", "soon", "--redis-url", redis)
	require.Error(t, err)
	assert.Equal(t, "invalid time range", err.Error())
}

func TestSessionWatch(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := "redis://" + mr.Addr()
	ctx := context.Background()

	client := session.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := session.NewSession("")
	require.NoError(t, client.CreateSession(ctx, s))

	type result struct {
		stdout string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		stdout, _, err := run(t, "session", "watch", s.ID, "--count", "1", "--format", "jsonl", "--redis-url", redis)
		done <- result{stdout, err}
	}()

	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer raw.Close()
	channel := session.AssignmentEventsChannel(s.ID)
	require.Eventually(t, func() bool {
		counts, err := raw.PubSubNumSub(ctx, channel).Result()
		return err == nil && counts[channel] > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.SetAssignment(ctx, s.ID, "Oak Rd|Even", "Carol"))

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, `"chunk_id":"Oak Rd|Even"`)
		assert.Contains(t, res.stdout, `"assignee":"Carol"`)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not return after one change")
	}

	t.Run("rejects negative count", func(t *testing.T) {
		_, _, err := run(t, "session", "watch", s.ID, "--count=-1", "--redis-url", redis)
		require.Error(t, err)
		assert.Equal(t, "invalid --count", err.Error())
	})

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := run(t, "session", "watch", session.NewSession("").ID, "--redis-url", redis)
		require.Error(t, err)
		assert.Equal(t, "session not found", err.Error())
	})
}
