package store

import (
	"fmt"

	"gorm.io/gorm"
)

// Open selects a record-store backend by its configured key. The
// backend is chosen once at startup; reconfiguration means constructing
// a new store and swapping the handle held by the callers.
//
// db is only required for the relational backend and may be nil
// otherwise.
func Open(backend string, db *gorm.DB) (Store, error) {
	switch Backend(backend) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRelational:
		if db == nil {
			return nil, fmt.Errorf("relational backend selected but no database connection provided")
		}
		return NewGormStore(db), nil
	case BackendDocument, BackendRealtimeTree:
		return NewStubStore(Backend(backend)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
