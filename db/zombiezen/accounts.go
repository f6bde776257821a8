package zombiezen

import (
	"context"
	"fmt"

	"github.com/caasmo/authrelay/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// GetAccountLink retrieves an oauth2 account link by its composite key.
// Returns nil, nil when no link matches.
func (d *Db) GetAccountLink(provider, providerAccountID string) (*db.AccountLink, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var link *db.AccountLink
	err = sqlitex.Execute(conn,
		`SELECT provider, provider_account_id, user_id, access_token, created
		FROM oauth_accounts WHERE provider = ? AND provider_account_id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				created, err := db.TimeParse(stmt.GetText("created"))
				if err != nil {
					return fmt.Errorf("error parsing created time: %w", err)
				}
				link = &db.AccountLink{
					Provider:          stmt.GetText("provider"),
					ProviderAccountID: stmt.GetText("provider_account_id"),
					UserID:            stmt.GetText("user_id"),
					AccessToken:       stmt.GetText("access_token"),
					Created:           created,
				}
				return nil
			},
			Args: []interface{}{provider, providerAccountID},
		})

	if err != nil {
		return nil, err
	}

	return link, nil
}

// InsertAccountLink persists a new link. The primary key on
// (provider, provider_account_id) is the concurrency guard: the second of
// two racing callbacks for the same external identity gets
// db.ErrConstraintUnique and must re-read the link.
func (d *Db) InsertAccountLink(l db.AccountLink) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO oauth_accounts (provider, provider_account_id, user_id, access_token)
		VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{l.Provider, l.ProviderAccountID, l.UserID, l.AccessToken},
		})
	if err != nil {
		if isUniqueConstraint(err) {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to insert account link: %w", err)
	}
	return nil
}
