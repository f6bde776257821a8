package zombiezen

import (
	"context"
	"fmt"

	"github.com/caasmo/authrelay/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const conversationColumns = `id, user_id, title, created, updated`

func newConversationFromStmt(stmt *sqlite.Stmt) (*db.Conversation, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}
	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}
	return &db.Conversation{
		ID:      stmt.GetText("id"),
		UserID:  stmt.GetText("user_id"),
		Title:   stmt.GetText("title"),
		Created: created,
		Updated: updated,
	}, nil
}

func (d *Db) CreateConversation(c db.Conversation) (*db.Conversation, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var created *db.Conversation
	err = sqlitex.Execute(conn,
		`INSERT INTO conversations (id, user_id, title)
		VALUES (?, ?, ?)
		RETURNING `+conversationColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				created, err = newConversationFromStmt(stmt)
				return err
			},
			Args: []interface{}{c.ID, c.UserID, c.Title},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return created, nil
}

func (d *Db) GetConversation(id, userId string) (*db.Conversation, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var conversation *db.Conversation
	err = sqlitex.Execute(conn,
		`SELECT `+conversationColumns+`
		FROM conversations WHERE id = ? AND user_id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				conversation, err = newConversationFromStmt(stmt)
				return err
			},
			Args: []interface{}{id, userId},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conversation, nil
}

func (d *Db) ListConversations(userId string) ([]*db.Conversation, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	conversations := []*db.Conversation{}
	err = sqlitex.Execute(conn,
		`SELECT `+conversationColumns+`
		FROM conversations WHERE user_id = ?
		ORDER BY updated DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				c, err := newConversationFromStmt(stmt)
				if err != nil {
					return err
				}
				conversations = append(conversations, c)
				return nil
			},
			Args: []interface{}{userId},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

func (d *Db) DeleteConversation(id, userId string) (bool, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return false, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM conversations WHERE id = ? AND user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{id, userId},
		})
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return conn.Changes() > 0, nil
}

func (d *Db) ListMessages(conversationId string) ([]*db.Message, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	messages := []*db.Message{}
	err = sqlitex.Execute(conn,
		`SELECT id, conversation_id, user_id, role, content, created
		FROM messages WHERE conversation_id = ?
		ORDER BY created ASC, id ASC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				created, err := db.TimeParse(stmt.GetText("created"))
				if err != nil {
					return fmt.Errorf("error parsing created time: %w", err)
				}
				messages = append(messages, &db.Message{
					ID:             stmt.GetText("id"),
					ConversationID: stmt.GetText("conversation_id"),
					UserID:         stmt.GetText("user_id"),
					Role:           db.MessageRole(stmt.GetText("role")),
					Content:        stmt.GetText("content"),
					Created:        created,
				})
				return nil
			},
			Args: []interface{}{conversationId},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// InsertMessage appends a message and bumps the parent conversation's
// updated column in the same savepoint, so listing order tracks activity.
func (d *Db) InsertMessage(m db.Message) (*db.Message, error) {
	conn, errConn := d.pool.Take(context.TODO())
	if errConn != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", errConn)
	}
	defer d.pool.Put(conn)

	var inserted *db.Message
	err := func() (err error) {
		defer sqlitex.Save(conn)(&err)

		err = sqlitex.Execute(conn,
			`INSERT INTO messages (id, conversation_id, user_id, role, content)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id, conversation_id, user_id, role, content, created`,
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					created, err := db.TimeParse(stmt.GetText("created"))
					if err != nil {
						return fmt.Errorf("error parsing created time: %w", err)
					}
					inserted = &db.Message{
						ID:             stmt.GetText("id"),
						ConversationID: stmt.GetText("conversation_id"),
						UserID:         stmt.GetText("user_id"),
						Role:           db.MessageRole(stmt.GetText("role")),
						Content:        stmt.GetText("content"),
						Created:        created,
					}
					return nil
				},
				Args: []interface{}{m.ID, m.ConversationID, m.UserID, string(m.Role), m.Content},
			})
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		err = sqlitex.Execute(conn,
			`UPDATE conversations
			SET updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
			WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []interface{}{m.ConversationID},
			})
		if err != nil {
			return fmt.Errorf("failed to bump conversation: %w", err)
		}
		return nil
	}()
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func (d *Db) UpdateConversationTitle(id, userId, title string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE conversations
		SET title = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ? AND user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{title, id, userId},
		})
	if err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	return nil
}
