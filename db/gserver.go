package db

import (
	"context"
	"fmt"
)

// Network identifiers.
const (
	NetworkDFRN        = "dfrn"
	NetworkActivityPub = "apub"
	NetworkDiaspora    = "dspr"
	NetworkOStatus     = "stat"
)

type GServer struct {
	ID      int64  `db:"id"`
	URL     string `db:"url"`
	Network string `db:"network"`
	Failed  bool   `db:"failed"`
	Blocked bool   `db:"blocked"`
}

type GServerModel struct {
	DB *DB
}

func NewGServerModel(db *DB) *GServerModel {
	return &GServerModel{DB: db}
}

// Save inserts the server or updates the one with the same url.
func (m *GServerModel) Save(ctx context.Context, s *GServer) error {
	query := `
		INSERT INTO gserver (url, network, failed, blocked)
		VALUES (:url, :network, :failed, :blocked)
		ON CONFLICT(url) DO UPDATE SET network = excluded.network, failed = excluded.failed, blocked = excluded.blocked
	`
	if _, err := m.DB.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to save server %s: %w", s.URL, err)
	}
	return nil
}

// CountFederated counts reachable, unblocked DFRN and ActivityPub servers.
func (m *GServerModel) CountFederated(ctx context.Context) (int64, error) {
	return m.DB.Count(ctx, "gserver", FederatedServers())
}

// FederatedServers selects reachable, unblocked DFRN and ActivityPub servers.
func FederatedServers() Condition {
	return Condition{
		"network": []string{NetworkDFRN, NetworkActivityPub},
		"failed":  false,
		"blocked": false,
	}
}
