package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fedinstance/config"

	"github.com/jmoiron/sqlx"
)

type User struct {
	UID            int64     `db:"uid" json:"uid"`
	Nickname       string    `db:"nickname" json:"nickname"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	Password       string    `db:"password" json:"-"`
	PubKey         string    `db:"pubkey" json:"-"`
	PrvKey         string    `db:"prvkey" json:"-"`
	Verified       bool      `db:"verified" json:"verified"`
	Blocked        bool      `db:"blocked" json:"blocked"`
	AccountRemoved bool      `db:"account_removed" json:"account_removed"`
	AccountExpired bool      `db:"account_expired" json:"account_expired"`
	RegisterDate   time.Time `db:"register_date" json:"register_date"`
	LastActivity   time.Time `db:"last-activity" json:"last_activity"`
}

// UserStatistics counts active local users.
type UserStatistics struct {
	Total          int64 `db:"total"`
	ActiveHalfyear int64 `db:"active_halfyear"`
	ActiveMonthly  int64 `db:"active_monthly"`
	ActiveWeekly   int64 `db:"active_weekly"`
}

// UserModel also serves as the admin directory: administrators are the users
// whose email is listed in config.admin_email.
type UserModel struct {
	DB  *DB
	cfg config.Reader
}

func NewUserModel(db *DB, cfg config.Reader) *UserModel {
	return &UserModel{DB: db, cfg: cfg}
}

func (m *UserModel) Create(ctx context.Context, u *User) error {
	return m.insert(ctx, m.DB, u)
}

// CreateTx inserts u as part of tx.
func (m *UserModel) CreateTx(ctx context.Context, tx *sqlx.Tx, u *User) error {
	return m.insert(ctx, tx, u)
}

func (m *UserModel) insert(ctx context.Context, exec sqlx.ExecerContext, u *User) error {
	now := time.Now()
	if u.RegisterDate.IsZero() {
		u.RegisterDate = now
	}
	if u.LastActivity.IsZero() {
		u.LastActivity = now
	}
	query := `
		INSERT INTO "user" (nickname, username, email, password, pubkey, prvkey, verified, blocked,
			account_removed, account_expired, register_date, "last-activity")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := exec.ExecContext(ctx, query, u.Nickname, u.Username, u.Email, u.Password, u.PubKey, u.PrvKey,
		u.Verified, u.Blocked, u.AccountRemoved, u.AccountExpired, sqlTime(u.RegisterDate), sqlTime(u.LastActivity))
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", u.Nickname, err)
	}
	u.UID, err = result.LastInsertId()
	return err
}

func (m *UserModel) GetByNickname(ctx context.Context, nickname string) (*User, error) {
	var u User
	err := m.DB.GetContext(ctx, &u, `SELECT * FROM "user" WHERE nickname = ?`, nickname)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", nickname, ErrNotExist)
	}
	return &u, err
}

// AdminEmailList returns the lowercased addresses of config.admin_email in
// configured order. It does not check that a user owns them.
func (m *UserModel) AdminEmailList(ctx context.Context) ([]string, error) {
	raw := config.String(m.cfg, "config", "admin_email", "")
	raw = strings.ToLower(strings.ReplaceAll(raw, " ", ""))
	emails := []string{}
	for _, e := range strings.Split(raw, ",") {
		if e != "" {
			emails = append(emails, e)
		}
	}
	return emails, nil
}

// FirstAdmin returns the selected fields of the first administrator:
// config.admin_nickname when set, otherwise the oldest active user whose
// email is an admin email. ErrNotExist when there is none.
func (m *UserModel) FirstAdmin(ctx context.Context, fields ...string) (Row, error) {
	if nick := config.String(m.cfg, "config", "admin_nickname", ""); nick != "" {
		return m.DB.SelectFirst(ctx, "user", fields, Condition{"nickname": nick})
	}

	emails, err := m.AdminEmailList(ctx)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, ErrNotExist
	}

	columns := "*"
	if len(fields) > 0 {
		quoted := make([]string, len(fields))
		for i, f := range fields {
			if quoted[i], err = quoteIdent(f); err != nil {
				return nil, err
			}
		}
		columns = strings.Join(quoted, ", ")
	}
	query, args, err := sqlx.In(`SELECT `+columns+` FROM "user"
		WHERE LOWER(email) IN (?) AND verified AND NOT blocked AND NOT account_removed AND NOT account_expired
		ORDER BY uid LIMIT 1`, emails)
	if err != nil {
		return nil, err
	}

	row := Row{}
	if err := m.DB.QueryRowxContext(ctx, m.DB.Rebind(query), args...).MapScan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to look up first admin: %w", err)
	}
	return row, nil
}

// Statistics counts verified, usable accounts and how many were active in
// the last 180, 30 and 7 days relative to now.
func (m *UserModel) Statistics(ctx context.Context, now time.Time) (UserStatistics, error) {
	var s UserStatistics
	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN "last-activity" > ? THEN 1 ELSE 0 END), 0) AS active_halfyear,
			COALESCE(SUM(CASE WHEN "last-activity" > ? THEN 1 ELSE 0 END), 0) AS active_monthly,
			COALESCE(SUM(CASE WHEN "last-activity" > ? THEN 1 ELSE 0 END), 0) AS active_weekly
		FROM "user"
		WHERE verified AND NOT blocked AND NOT account_removed AND NOT account_expired AND uid != 0
	`
	day := 24 * time.Hour
	err := m.DB.GetContext(ctx, &s, query,
		sqlTime(now.Add(-180*day)), sqlTime(now.Add(-30*day)), sqlTime(now.Add(-7*day)))
	if err != nil {
		return s, fmt.Errorf("failed to count users: %w", err)
	}
	return s, nil
}
