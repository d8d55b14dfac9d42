package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "Elm St|Odd", ChunkID("Elm St", ParityOdd))
	assert.Equal(t, "Elm St|Even", ChunkID("Elm St", ParityEven))
	assert.Equal(t, "Elm St|Unknown", ChunkID("Elm St", ParityUnknown))
}

func TestSplitChunkID(t *testing.T) {
	t.Run("round-trips chunk IDs", func(t *testing.T) {
		street, parity, err := SplitChunkID(ChunkID("High Street", ParityEven))
		require.NoError(t, err)
		assert.Equal(t, "High Street", street)
		assert.Equal(t, ParityEven, parity)
	})

	t.Run("street containing separator", func(t *testing.T) {
		street, parity, err := SplitChunkID("A|B Road|Odd")
		require.NoError(t, err)
		assert.Equal(t, "A|B Road", street)
		assert.Equal(t, ParityOdd, parity)
	})

	t.Run("rejects missing separator", func(t *testing.T) {
		_, _, err := SplitChunkID("Elm St")
		assert.Error(t, err)
	})

	t.Run("rejects unknown label", func(t *testing.T) {
		_, _, err := SplitChunkID("Elm St|Sideways")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown parity label")
	})
}

func TestClassify(t *testing.T) {
	records := []*Record{
		{Street: "Elm St", Address: "12A"},
		{Street: "Elm St", Address: "7"},
		{Street: "Elm St", Address: "Rose Cottage"},
		{Street: "Oak Rd", Address: "4"},
	}

	Classify(records)

	assert.Equal(t, "Elm St|Even", records[0].ChunkID)
	assert.Equal(t, int64(12), records[0].HouseNumber.Value)
	assert.Equal(t, "Elm St|Odd", records[1].ChunkID)
	assert.Equal(t, "Elm St|Unknown", records[2].ChunkID)
	assert.False(t, records[2].HouseNumber.Known)
	assert.Equal(t, "Oak Rd|Even", records[3].ChunkID)

	t.Run("same street and parity share a chunk", func(t *testing.T) {
		other := []*Record{{Street: "Elm St", Address: "4"}}
		Classify(other)
		assert.Equal(t, records[0].ChunkID, other[0].ChunkID)
	})
}

func TestChunks(t *testing.T) {
	records := []*Record{
		{Street: "Elm St", Address: "7"},
		{Street: "Elm St", Address: "4"},
		{Street: "Elm St", Address: "9"},
		{Street: "Oak Rd", Address: "1"},
	}
	Classify(records)

	assert.Equal(t, []string{"Elm St|Odd", "Elm St|Even", "Oak Rd|Odd"}, Chunks(records))
	assert.Equal(t, map[string]int{"Elm St|Odd": 2, "Elm St|Even": 1, "Oak Rd|Odd": 1}, ChunkSizes(records))
}

func TestDetectStreets(t *testing.T) {
	records := []*Record{
		{Street: "Oak Rd"},
		{Street: "Elm St"},
		{Street: ""},
		{Street: "Oak Rd"},
		{Street: "  "},
		{Street: "Ash Grove"},
	}

	assert.Equal(t, []string{"Ash Grove", "Elm St", "Oak Rd"}, DetectStreets(records))
}
