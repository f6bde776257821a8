package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/caasmo/authrelay/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func (d *Db) InsertToken(t db.SingleUseToken) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO single_use_tokens (kind, identifier, token, expires)
		VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{string(t.Kind), t.Identifier, t.Token, db.TimeFormatString(t.Expires)},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (d *Db) DeleteTokensByIdentifier(kind db.TokenKind, identifier string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM single_use_tokens WHERE kind = ? AND identifier = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{string(kind), identifier},
		})
	if err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}

// fetchToken loads a token row of the given kind on an already-held
// connection. Returns nil when no row matches.
func fetchToken(conn *sqlite.Conn, kind db.TokenKind, token string) (*db.SingleUseToken, error) {
	var row *db.SingleUseToken
	err := sqlitex.Execute(conn,
		`SELECT kind, identifier, token, expires
		FROM single_use_tokens WHERE kind = ? AND token = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				expires, err := db.TimeParse(stmt.GetText("expires"))
				if err != nil {
					return fmt.Errorf("error parsing expires time: %w", err)
				}
				row = &db.SingleUseToken{
					Kind:       db.TokenKind(stmt.GetText("kind")),
					Identifier: stmt.GetText("identifier"),
					Token:      stmt.GetText("token"),
					Expires:    expires,
				}
				return nil
			},
			Args: []interface{}{string(kind), token},
		})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func deleteToken(conn *sqlite.Conn, kind db.TokenKind, token string) error {
	return sqlitex.Execute(conn,
		`DELETE FROM single_use_tokens WHERE kind = ? AND token = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{string(kind), token},
		})
}

// consumeToken implements the shared lookup/expiry policy for single-use
// tokens and, on the happy path, runs the dependent user mutation inside
// the same savepoint as the token deletion. An expired row is deleted
// outside the savepoint so it stays gone even though the call fails.
func (d *Db) consumeToken(kind db.TokenKind, token string, now time.Time, mutate func(conn *sqlite.Conn, identifier string) error) (string, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return "", fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	row, err := fetchToken(conn, kind, token)
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if row == nil {
		return "", db.ErrTokenNotFound
	}

	if row.Expires.Before(now) {
		if err := deleteToken(conn, kind, token); err != nil {
			return "", fmt.Errorf("failed to delete expired token: %w", err)
		}
		return "", db.ErrTokenExpired
	}

	txErr := func() (err error) {
		defer sqlitex.Save(conn)(&err)
		if err = deleteToken(conn, kind, token); err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		return mutate(conn, row.Identifier)
	}()
	if txErr != nil {
		return "", txErr
	}

	return row.Identifier, nil
}

// ConsumeVerification deletes the verification token row and stamps the
// owning user's email as verified, in one transactional unit. Returns
// the email address the token was issued for.
func (d *Db) ConsumeVerification(token string, now time.Time) (string, error) {
	return d.consumeToken(db.TokenKindVerification, token, now, func(conn *sqlite.Conn, email string) error {
		err := sqlitex.Execute(conn,
			`UPDATE users
			SET verified = ?,
				updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
			WHERE email = ?`,
			&sqlitex.ExecOptions{
				Args: []interface{}{db.TimeFormatString(now), email},
			})
		if err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
		return nil
	})
}

// ConsumePasswordReset deletes the reset token row and stores the new
// password hash, in one transactional unit. A failed update leaves the
// token intact; a spent token can never authorize a second reset.
// Returns the owning user id.
func (d *Db) ConsumePasswordReset(token string, now time.Time, newPasswordHash string) (string, error) {
	return d.consumeToken(db.TokenKindPasswordReset, token, now, func(conn *sqlite.Conn, userId string) error {
		err := sqlitex.Execute(conn,
			`UPDATE users
			SET password = ?,
				updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
			WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []interface{}{newPasswordHash, userId},
			})
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}
