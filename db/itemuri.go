package db

import (
	"context"
	"fmt"
)

type ItemURIModel struct {
	DB *DB
}

func NewItemURIModel(db *DB) *ItemURIModel {
	return &ItemURIModel{DB: db}
}

// IDByURI returns the id of uri, registering it first if needed.
func (m *ItemURIModel) IDByURI(ctx context.Context, uri string) (int64, error) {
	if _, err := m.DB.ExecContext(ctx, `INSERT OR IGNORE INTO "item-uri" (uri) VALUES (?)`, uri); err != nil {
		return 0, fmt.Errorf("failed to register uri %s: %w", uri, err)
	}
	var id int64
	if err := m.DB.GetContext(ctx, &id, `SELECT id FROM "item-uri" WHERE uri = ?`, uri); err != nil {
		return 0, fmt.Errorf("failed to look up uri %s: %w", uri, err)
	}
	return id, nil
}
