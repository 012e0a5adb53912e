package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Contact types.
const (
	ContactTypePerson       = 0
	ContactTypeOrganisation = 1
	ContactTypeNews         = 2
	ContactTypeCommunity    = 3
	ContactTypeRelay        = 4
)

// Relationship of a user's contact to that user.
const (
	RelFollower = 1
	RelSharing  = 2
	RelFriend   = 3
)

type Contact struct {
	ID              int64     `db:"id" json:"id"`
	UID             int64     `db:"uid" json:"uid"`
	URIID           int64     `db:"uri-id" json:"uri_id"`
	Self            bool      `db:"self" json:"self"`
	Nick            string    `db:"nick" json:"nick"`
	Name            string    `db:"name" json:"name"`
	Addr            string    `db:"addr" json:"addr"`
	URL             string    `db:"url" json:"url"`
	About           string    `db:"about" json:"about"`
	Avatar          string    `db:"avatar" json:"avatar"`
	Header          string    `db:"header" json:"header"`
	ContactType     int       `db:"contact-type" json:"contact_type"`
	ManuallyApprove bool      `db:"manually-approve" json:"manually_approve"`
	Hidden          bool      `db:"hidden" json:"hidden"`
	Rel             int       `db:"rel" json:"rel"`
	Created         time.Time `db:"created" json:"created"`
}

type ContactModel struct {
	DB *DB
}

func NewContactModel(db *DB) *ContactModel {
	return &ContactModel{DB: db}
}

func (m *ContactModel) Create(ctx context.Context, c *Contact) error {
	return m.insert(ctx, m.DB, c)
}

// CreateTx inserts c as part of tx.
func (m *ContactModel) CreateTx(ctx context.Context, tx *sqlx.Tx, c *Contact) error {
	return m.insert(ctx, tx, c)
}

func (m *ContactModel) insert(ctx context.Context, exec sqlx.ExecerContext, c *Contact) error {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	query := `
		INSERT INTO contact (uid, "uri-id", self, nick, name, addr, url, about, avatar, header,
			"contact-type", "manually-approve", hidden, rel, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := exec.ExecContext(ctx, query, c.UID, c.URIID, c.Self, c.Nick, c.Name, c.Addr, c.URL, c.About,
		c.Avatar, c.Header, c.ContactType, c.ManuallyApprove, c.Hidden, c.Rel, sqlTime(c.Created))
	if err != nil {
		return fmt.Errorf("failed to insert contact %s: %w", c.Nick, err)
	}
	c.ID, err = result.LastInsertId()
	return err
}

// GetByURIID prefers the self contact, then the public (uid 0) one.
func (m *ContactModel) GetByURIID(ctx context.Context, uriID int64) (*Contact, error) {
	var c Contact
	query := `SELECT * FROM contact WHERE "uri-id" = ? ORDER BY self DESC, uid ASC LIMIT 1`
	err := m.DB.GetContext(ctx, &c, query, uriID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact with uri-id %d: %w", uriID, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact with uri-id %d: %w", uriID, err)
	}
	return &c, nil
}

// CountRelations counts the non-self contacts of uid having one of rels.
func (m *ContactModel) CountRelations(ctx context.Context, uid int64, rels ...int) (int64, error) {
	return m.DB.Count(ctx, "contact", Condition{"uid": uid, "rel": rels, "self": false})
}
