// Package assign maps route chunks to canvassers.
//
// An assignable unit is either a pair of canvassers or a single canvasser
// who is not in any pair. Chunks are assigned to units, either by the
// caller (manual mode) or round-robin in chunk discovery order (automatic
// mode). When a chunk belongs to a pair, each record in the chunk is then
// attributed to one pair member, round-robin by the record's position in
// the full route.
//
// # Usage Example
//
//	engine := assign.NewEngine(r, pairing)
//	chunks := route.Chunks(table.Records)
//
//	m, err := engine.Automatic(chunks)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := assign.Finalize(chunks, m); err != nil {
//		log.Fatal(err) // IncompleteAssignmentError in manual mode
//	}
//	warnings, err := engine.Attribute(table.Records, m)
package assign
