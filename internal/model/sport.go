package model

// Sport describes a bookable facility resource as stored in the
// `sports` table. PlayerCount is the total capacity of a single
// reservation (creator included). It is nullable in the schema; a
// missing value is treated as capacity 1 by the reservation engine.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique sport name (case-insensitive on update).
//  Description – free-text description, may be empty.
//  PlayerCount – capacity per reservation (nullable).
type Sport struct {
	ID          uint64 // sports.id
	Name        string // sports.name
	Description string // sports.description
	PlayerCount *int   // sports.player_count (nullable)
}

// Capacity returns the effective player capacity, defaulting to 1
// when the column is null.
func (s Sport) Capacity() int {
	if s.PlayerCount == nil {
		return 1
	}
	return *s.PlayerCount
}
