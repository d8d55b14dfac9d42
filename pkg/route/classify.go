package route

import (
	"fmt"
	"sort"
	"strings"
)

// ChunkSeparator joins street and parity label inside a chunk ID.
const ChunkSeparator = "|"

// ChunkID returns the chunk identifier for a street and parity.
// Pattern: {street}|{Odd|Even|Unknown}
func ChunkID(street string, p Parity) string {
	return street + ChunkSeparator + p.String()
}

// SplitChunkID reverses ChunkID. The parity label is taken from the last
// separator so street names containing "|" still round-trip.
func SplitChunkID(id string) (string, Parity, error) {
	idx := strings.LastIndex(id, ChunkSeparator)
	if idx < 0 {
		return "", ParityUnknown, fmt.Errorf("invalid chunk ID %q: missing %q separator", id, ChunkSeparator)
	}

	p, err := ParseParity(id[idx+1:])
	if err != nil {
		return "", ParityUnknown, fmt.Errorf("invalid chunk ID %q: %w", id, err)
	}

	return id[:idx], p, nil
}

// Classify parses the house number of every record and labels it with its
// chunk ID. Running it twice on the same records is a no-op.
func Classify(records []*Record) {
	for _, r := range records {
		r.HouseNumber = ParseHouseNumber(r.Address)
		r.ChunkID = ChunkID(r.Street, r.HouseNumber.Parity())
	}
}

// Chunks returns the distinct chunk IDs of records in order of first
// appearance. Records must already be classified.
func Chunks(records []*Record) []string {
	seen := make(map[string]bool)
	var chunks []string
	for _, r := range records {
		if seen[r.ChunkID] {
			continue
		}
		seen[r.ChunkID] = true
		chunks = append(chunks, r.ChunkID)
	}
	return chunks
}

// ChunkSizes counts records per chunk ID.
func ChunkSizes(records []*Record) map[string]int {
	sizes := make(map[string]int)
	for _, r := range records {
		sizes[r.ChunkID]++
	}
	return sizes
}

// DetectStreets returns the distinct non-empty street names in records,
// sorted alphabetically. This is the default walking order offered to users.
func DetectStreets(records []*Record) []string {
	seen := make(map[string]bool)
	var streets []string
	for _, r := range records {
		if strings.TrimSpace(r.Street) == "" || seen[r.Street] {
			continue
		}
		seen[r.Street] = true
		streets = append(streets, r.Street)
	}
	sort.Strings(streets)
	return streets
}
