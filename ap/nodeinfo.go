package ap

import (
	"context"
	"fmt"
	"time"

	"fedinstance/config"
	"fedinstance/db"

	"go.uber.org/zap"
)

// NodeInfoUsage represents the usage statistics
type NodeInfoUsage struct {
	Users         NodeInfoUsageUsers `json:"users"`
	LocalPosts    int64              `json:"localPosts"`
	LocalComments int64              `json:"localComments"`
}

// NodeInfoUsageUsers represents user statistics
type NodeInfoUsageUsers struct {
	Total          int64 `json:"total"`
	ActiveHalfyear int64 `json:"activeHalfyear"`
	ActiveMonth    int64 `json:"activeMonth"`
	ActiveWeek     int64 `json:"activeWeek"`
}

// NodeinfoUpdater recomputes the usage statistics and stores them in the
// key-value table, where the Mastodon instance stats read them from.
type NodeinfoUpdater struct {
	cfg    config.Reader
	users  *db.UserModel
	posts  *db.PostModel
	kv     *db.KeyValueModel
	logger *zap.Logger
	now    func() time.Time
}

func NewNodeinfoUpdater(cfg config.Reader, users *db.UserModel, posts *db.PostModel, kv *db.KeyValueModel, logger *zap.Logger) *NodeinfoUpdater {
	return &NodeinfoUpdater{
		cfg:    cfg,
		users:  users,
		posts:  posts,
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether system.nodeinfo is on.
func (u *NodeinfoUpdater) Enabled() bool {
	return config.Bool(u.cfg, "system", "nodeinfo", false)
}

// Update stores fresh statistics. It does nothing when nodeinfo is disabled.
func (u *NodeinfoUpdater) Update(ctx context.Context) (NodeInfoUsage, error) {
	var usage NodeInfoUsage
	if !u.Enabled() {
		u.logger.Debug("nodeinfo disabled, skipping statistics update")
		return usage, nil
	}

	stats, err := u.users.Statistics(ctx, u.now())
	if err != nil {
		return usage, err
	}
	usage.Users = NodeInfoUsageUsers{
		Total:          stats.Total,
		ActiveHalfyear: stats.ActiveHalfyear,
		ActiveMonth:    stats.ActiveMonthly,
		ActiveWeek:     stats.ActiveWeekly,
	}

	if usage.LocalPosts, err = u.posts.CountLocal(ctx, db.GravityParent); err != nil {
		return usage, fmt.Errorf("failed to count local posts: %w", err)
	}
	if usage.LocalComments, err = u.posts.CountLocal(ctx, db.GravityComment); err != nil {
		return usage, fmt.Errorf("failed to count local comments: %w", err)
	}

	values := []struct {
		key   string
		value int64
	}{
		{db.KeyNodeinfoTotalUsers, usage.Users.Total},
		{db.KeyNodeinfoActiveUsersHalfyear, usage.Users.ActiveHalfyear},
		{db.KeyNodeinfoActiveUsersMonthly, usage.Users.ActiveMonth},
		{db.KeyNodeinfoActiveUsersWeekly, usage.Users.ActiveWeek},
		{db.KeyNodeinfoLocalPosts, usage.LocalPosts},
		{db.KeyNodeinfoLocalComments, usage.LocalComments},
	}
	for _, v := range values {
		if err := u.kv.SetInt(ctx, v.key, v.value); err != nil {
			return usage, err
		}
	}

	u.logger.Info("nodeinfo statistics updated",
		zap.Int64("users", usage.Users.Total),
		zap.Int64("posts", usage.LocalPosts),
		zap.Int64("comments", usage.LocalComments))
	return usage, nil
}
