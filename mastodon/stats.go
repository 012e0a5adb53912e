package mastodon

import (
	"context"
	"errors"
	"fmt"

	"fedinstance/config"
	"fedinstance/db"
)

// Stats are the usage figures of the instance entity.
type Stats struct {
	UserCount   int64 `json:"user_count"`
	StatusCount int64 `json:"status_count"`
	DomainCount int64 `json:"domain_count"`
}

// NewStats reads the figures stored by the nodeinfo worker. They stay zero
// unless system.nodeinfo is enabled.
func NewStats(ctx context.Context, cfg config.Reader, database Database) (Stats, error) {
	var s Stats
	if !config.Bool(cfg, "system", "nodeinfo", false) {
		return s, nil
	}

	users, err := storedInt(ctx, database, db.KeyNodeinfoTotalUsers)
	if err != nil {
		return s, err
	}
	posts, err := storedInt(ctx, database, db.KeyNodeinfoLocalPosts)
	if err != nil {
		return s, err
	}
	comments, err := storedInt(ctx, database, db.KeyNodeinfoLocalComments)
	if err != nil {
		return s, err
	}
	domains, err := database.Count(ctx, "gserver", db.FederatedServers())
	if err != nil {
		return s, fmt.Errorf("failed to count known servers: %w", err)
	}

	s.UserCount = users
	s.StatusCount = posts + comments
	s.DomainCount = domains
	return s, nil
}

func storedInt(ctx context.Context, database Database, key string) (int64, error) {
	row, err := database.SelectFirst(ctx, "key-value", []string{"v"}, db.Condition{"k": key})
	if errors.Is(err, db.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return int64(config.IntVal(row.String("v"))), nil
}
