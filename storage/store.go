package storage

import "context"

// Collection names owned by the record store
const (
	IncidentsCollection = "incidents"
	HospitalsCollection = "hospitals"
)

// Record is a raw JSON object keyed by its integer "id" field. Keeping
// records untyped lets callers merge partial updates without the store
// knowing every field shape; bed-capacity fields and the like pass through
// untouched.
type Record = map[string]interface{}

// Store owns durable storage of named collections of keyed records.
// Update runs the supplied apply func against the current record under the
// store's write discipline, so overlapping updates cannot clobber each
// other; the store bumps the per-record version counter on every update.
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection string, id int) (Record, error)
	Create(ctx context.Context, collection string, build func(id int) Record) (Record, error)
	Update(ctx context.Context, collection string, id int, apply func(Record) (Record, error)) (Record, error)
	Delete(ctx context.Context, collection string, id int) error
}

// RecordID extracts the integer identifier of a record. JSON decoding
// yields float64 numbers, mongo yields int32/int64.
func RecordID(rec Record) (int, bool) {
	switch v := rec["id"].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func recordVersion(rec Record) int {
	switch v := rec["version"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// nextID assigns identifiers monotonically from the highest existing one,
// starting at 101. Unlike length-based assignment this stays unique after
// deletions.
func nextID(records []Record) int {
	next := 101
	for _, rec := range records {
		if id, ok := RecordID(rec); ok && id >= next {
			next = id + 1
		}
	}
	return next
}
