package zombiezen

import (
	"context"
	"fmt"

	"github.com/caasmo/authrelay/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// GetSessionByToken retrieves a session by its token (the primary key).
// Returns nil, nil when no session matches. Expiry is NOT checked here;
// the session manager owns that policy.
func (d *Db) GetSessionByToken(token string) (*db.Session, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var session *db.Session
	err = sqlitex.Execute(conn,
		`SELECT token, user_id, expires FROM sessions WHERE token = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				expires, err := db.TimeParse(stmt.GetText("expires"))
				if err != nil {
					return fmt.Errorf("error parsing expires time: %w", err)
				}
				session = &db.Session{
					Token:   stmt.GetText("token"),
					UserID:  stmt.GetText("user_id"),
					Expires: expires,
				}
				return nil
			},
			Args: []interface{}{token},
		})

	if err != nil {
		return nil, err
	}

	return session, nil
}

func (d *Db) InsertSession(s db.Session) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO sessions (token, user_id, expires) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{s.Token, s.UserID, db.TimeFormatString(s.Expires)},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// DeleteSessionByToken is idempotent: deleting an unknown token succeeds.
func (d *Db) DeleteSessionByToken(token string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM sessions WHERE token = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{token},
		})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (d *Db) DeleteSessionsByUser(userId string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM sessions WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{userId},
		})
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}
