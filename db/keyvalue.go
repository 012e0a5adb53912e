package db

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type KeyValueModel struct {
	DB *DB
}

func NewKeyValueModel(db *DB) *KeyValueModel {
	return &KeyValueModel{DB: db}
}

func (m *KeyValueModel) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO "key-value" (k, v, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at
	`
	if _, err := m.DB.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (m *KeyValueModel) SetInt(ctx context.Context, key string, value int64) error {
	return m.Set(ctx, key, strconv.FormatInt(value, 10))
}

// Nodeinfo statistics keys.
const (
	KeyNodeinfoTotalUsers          = "nodeinfo_total_users"
	KeyNodeinfoActiveUsersHalfyear = "nodeinfo_active_users_halfyear"
	KeyNodeinfoActiveUsersMonthly  = "nodeinfo_active_users_monthly"
	KeyNodeinfoActiveUsersWeekly   = "nodeinfo_active_users_weekly"
	KeyNodeinfoLocalPosts          = "nodeinfo_local_posts"
	KeyNodeinfoLocalComments       = "nodeinfo_local_comments"
)
