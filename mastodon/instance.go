package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fedinstance/config"
	"fedinstance/db"
	"fedinstance/etc"
	"fedinstance/optional"

	"go.uber.org/zap"
)

// RegisterPolicy controls whether new accounts may sign up.
type RegisterPolicy int

const (
	RegisterClosed  RegisterPolicy = 0
	RegisterApprove RegisterPolicy = 1
	RegisterOpen    RegisterPolicy = 2
)

// Invitations are not supported.
const InvitesEnabled = false

// StreamingAPIURL is advertised empty since streaming is not supported.
const StreamingAPIURL = ""

const (
	defaultSiteName = "Friendica Social Network"
	defaultLanguage = "en"
)

// BaseURL is the public origin of the server.
type BaseURL interface {
	Host() string
	String() string
}

// Database is the read access the builders need.
type Database interface {
	SelectFirst(ctx context.Context, table string, columns []string, cond db.Condition) (db.Row, error)
	Count(ctx context.Context, table string, cond db.Condition) (int64, error)
}

type AdminDirectory interface {
	AdminEmailList(ctx context.Context) ([]string, error)
	FirstAdmin(ctx context.Context, fields ...string) (db.Row, error)
}

type BannerResolver interface {
	MastodonBannerPath() (string, error)
}

type AccountResolver interface {
	FromURIID(ctx context.Context, uriID int64) (*Account, error)
}

// InstanceSources are the collaborators NewInstance reads from.
type InstanceSources struct {
	Config   config.Reader
	BaseURL  BaseURL
	Database Database
	Admins   AdminDirectory
	Banner   BannerResolver
	Accounts AccountResolver
	// Version is the host application version.
	Version string
	Logger  *zap.Logger
}

// Instance is the Mastodon V1 instance entity.
//
// See https://docs.joinmastodon.org/entities/V1_Instance/
type Instance struct {
	URI              string                  `json:"uri"`
	Title            string                  `json:"title"`
	ShortDescription string                  `json:"short_description"`
	Description      string                  `json:"description"`
	Email            string                  `json:"email"`
	Version          string                  `json:"version"`
	URLs             map[string]string       `json:"urls"`
	Stats            Stats                   `json:"stats"`
	Thumbnail        optional.Option[string] `json:"thumbnail"`
	Languages        []string                `json:"languages"`
	MaxTootChars     int                     `json:"max_toot_chars"`
	Registrations    bool                    `json:"registrations"`
	ApprovalRequired bool                    `json:"approval_required"`
	InvitesEnabled   bool                    `json:"invites_enabled"`
	Configuration    Configuration           `json:"configuration"`
	ContactAccount   ContactAccount          `json:"contact_account"`
	Rules            []Rule                  `json:"rules"`
}

// ContactAccount is the administrator's account, encoded as {} when absent.
type ContactAccount struct {
	optional.Option[Account]
}

func (c ContactAccount) MarshalJSON() ([]byte, error) {
	if !c.Has() {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Value())
}

// CompatVersion is the version string Mastodon clients parse to detect features.
func CompatVersion(appVersion string) string {
	return etc.MastodonCompatVersion + " (compatible; " + etc.ProductName + " " + appVersion + ")"
}

// NewInstance assembles the instance entity. Collaborator failures are
// returned as is; nothing is retried.
func NewInstance(ctx context.Context, src InstanceSources, rules []Rule, configuration Configuration) (*Instance, error) {
	logger := src.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	policy := RegisterPolicy(config.Int(src.Config, "config", "register_policy", int(RegisterClosed)))

	emails, err := src.Admins.AdminEmailList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin emails: %w", err)
	}

	stats, err := NewStats(ctx, src.Config, src.Database)
	if err != nil {
		return nil, err
	}

	banner, err := src.Banner.MastodonBannerPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve banner: %w", err)
	}

	if rules == nil {
		rules = []Rule{}
	}

	info := config.String(src.Config, "config", "info", "")
	instance := &Instance{
		URI:              src.BaseURL.Host(),
		Title:            config.String(src.Config, "config", "sitename", defaultSiteName),
		ShortDescription: info,
		Description:      info,
		Email:            strings.Join(emails, ","),
		Version:          CompatVersion(src.Version),
		URLs:             map[string]string{"streaming_api": StreamingAPIURL},
		Stats:            stats,
		Languages:        []string{config.String(src.Config, "system", "language", defaultLanguage)},
		MaxTootChars:     MaxStatusCharacters(src.Config),
		Registrations:    policy != RegisterClosed,
		ApprovalRequired: policy == RegisterApprove,
		InvitesEnabled:   InvitesEnabled,
		Configuration:    configuration,
		Rules:            rules,
	}
	if banner != "" {
		instance.Thumbnail = optional.Some(src.BaseURL.String() + banner)
	}

	instance.ContactAccount, err = resolveContactAccount(ctx, src, logger)
	if err != nil {
		return nil, err
	}

	return instance, nil
}

func resolveContactAccount(ctx context.Context, src InstanceSources, logger *zap.Logger) (ContactAccount, error) {
	admin, err := src.Admins.FirstAdmin(ctx, "nickname")
	if errors.Is(err, db.ErrNotExist) {
		return ContactAccount{}, nil
	}
	if err != nil {
		return ContactAccount{}, fmt.Errorf("failed to look up first admin: %w", err)
	}

	nickname := admin.String("nickname")
	contact, err := src.Database.SelectFirst(ctx, "contact", []string{"uri-id"}, db.Condition{"nick": nickname, "self": true})
	if errors.Is(err, db.ErrNotExist) {
		logger.Warn("administrator has no self contact, omitting contact account", zap.String("nickname", nickname))
		return ContactAccount{}, nil
	}
	if err != nil {
		return ContactAccount{}, fmt.Errorf("failed to look up contact of %s: %w", nickname, err)
	}

	account, err := src.Accounts.FromURIID(ctx, contact.Int64("uri-id"))
	if err != nil {
		return ContactAccount{}, fmt.Errorf("failed to build account of %s: %w", nickname, err)
	}
	return ContactAccount{optional.Some(*account)}, nil
}
