package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fedinstance/optional"
)

// Post gravities.
const (
	GravityParent   = 0
	GravityActivity = 3
	GravityComment  = 6
)

type Post struct {
	ID       int64     `db:"id"`
	URIID    int64     `db:"uri-id"`
	AuthorID int64     `db:"author-id"`
	Gravity  int       `db:"gravity"`
	Origin   bool      `db:"origin"`
	Deleted  bool      `db:"deleted"`
	Created  time.Time `db:"created"`
}

type PostModel struct {
	DB *DB
}

func NewPostModel(db *DB) *PostModel {
	return &PostModel{DB: db}
}

func (m *PostModel) Create(ctx context.Context, p *Post) error {
	if p.Created.IsZero() {
		p.Created = time.Now()
	}
	query := `
		INSERT INTO post ("uri-id", "author-id", gravity, origin, deleted, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := m.DB.ExecContext(ctx, query, p.URIID, p.AuthorID, p.Gravity, p.Origin, p.Deleted, sqlTime(p.Created))
	if err != nil {
		return fmt.Errorf("failed to insert post %d: %w", p.URIID, err)
	}
	p.ID, err = result.LastInsertId()
	return err
}

// CountLocal counts non-deleted posts of the given gravity created on this server.
func (m *PostModel) CountLocal(ctx context.Context, gravity int) (int64, error) {
	return m.DB.Count(ctx, "post", Condition{"gravity": gravity, "origin": true, "deleted": false})
}

// CountByAuthor counts non-deleted top-level posts and comments by authorID.
func (m *PostModel) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return m.DB.Count(ctx, "post", Condition{
		"author-id": authorID,
		"gravity":   []int{GravityParent, GravityComment},
		"deleted":   false,
	})
}

// LastCreatedByAuthor returns when authorID last posted, if ever.
func (m *PostModel) LastCreatedByAuthor(ctx context.Context, authorID int64) (optional.Option[time.Time], error) {
	var last sql.NullString
	query := `SELECT MAX(created) FROM post WHERE "author-id" = ? AND gravity IN (?, ?) AND NOT deleted`
	if err := m.DB.GetContext(ctx, &last, query, authorID, GravityParent, GravityComment); err != nil {
		return nil, fmt.Errorf("failed to get last post of %d: %w", authorID, err)
	}
	if !last.Valid {
		return optional.None[time.Time](), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", last.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse post time %q: %w", last.String, err)
	}
	return optional.Some(t), nil
}
