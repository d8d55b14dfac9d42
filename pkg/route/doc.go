// Package route orders electoral-register records into a walkable canvassing
// sequence.
//
// # Overview
//
// A canvassing route is built in three steps, each a pure function over an
// in-memory Table:
//
//   - ParseHouseNumber extracts the first run of decimal digits from a
//     free-text address. Addresses without digits yield an unknown number.
//   - Classify labels every record with a chunk identifier derived from its
//     street and house-number parity ("Elm St|Odd").
//   - Sequence sorts records by a caller-supplied StreetOrder, then by parity
//     (Odd, Even, Unknown), then by house number, and numbers them 1..N.
//
// # Chunks
//
// A chunk is one side of one street: every record sharing a street and a
// parity. Chunk identity never depends on route order, so assignments keyed
// by chunk ID survive a change of street order.
//
// # Usage Example
//
//	table := &route.Table{Columns: []string{"Street", "Address"}}
//	table.Append(&route.Record{Street: "Elm St", Address: "7"})
//	table.Append(&route.Record{Street: "Elm St", Address: "4"})
//
//	result, err := route.Sequence(table, route.StreetOrder{"Elm St"}, route.PolicyStrict)
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = result
//	// table.Records[0].RouteOrder == 1 (house 7, Elm St|Odd)
//
// # Known Limitations
//
// The first digit run wins, so "Flat 2, 15 High Street" parses as 2.
package route
