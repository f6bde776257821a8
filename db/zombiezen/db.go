package zombiezen

import (
	"fmt"

	"github.com/caasmo/authrelay/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool *sqlitex.Pool
}

// Verify interface implementations
var _ db.DbAuth = (*Db)(nil)
var _ db.DbSession = (*Db)(nil)
var _ db.DbAccount = (*Db)(nil)
var _ db.DbToken = (*Db)(nil)
var _ db.DbChat = (*Db)(nil)
var _ db.DbQueue = (*Db)(nil)
var _ db.DbApp = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the pool is managed externally; this type does not
// close it.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// isUniqueConstraint reports whether err is a sqlite uniqueness
// violation. Primary key collisions carry their own extended code, so
// both are matched; other constraint kinds (NOT NULL, CHECK, FK) are
// deliberately excluded.
func isUniqueConstraint(err error) bool {
	code := sqlite.ErrCode(err)
	return code == sqlite.ResultConstraintUnique || code == sqlite.ResultConstraintPrimaryKey
}
