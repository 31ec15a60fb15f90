package pointsdb

import "github.com/uptrace/bun"

// Impl implements Repository on bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a repository backed by db.
func NewRepository(db bun.IDB) *Impl {
	return &Impl{db: db}
}

var _ Repository = (*Impl)(nil)

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}
