package mastodon

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fedinstance/db"
	"fedinstance/optional"
)

// Account is the Mastodon account entity.
//
// See https://docs.joinmastodon.org/entities/Account/
type Account struct {
	ID             string                  `json:"id"`
	Username       string                  `json:"username"`
	Acct           string                  `json:"acct"`
	DisplayName    string                  `json:"display_name"`
	Locked         bool                    `json:"locked"`
	Bot            bool                    `json:"bot"`
	Discoverable   bool                    `json:"discoverable"`
	Group          bool                    `json:"group"`
	CreatedAt      string                  `json:"created_at"`
	Note           string                  `json:"note"`
	URL            string                  `json:"url"`
	Avatar         string                  `json:"avatar"`
	AvatarStatic   string                  `json:"avatar_static"`
	Header         string                  `json:"header"`
	HeaderStatic   string                  `json:"header_static"`
	FollowersCount int64                   `json:"followers_count"`
	FollowingCount int64                   `json:"following_count"`
	StatusesCount  int64                   `json:"statuses_count"`
	LastStatusAt   optional.Option[string] `json:"last_status_at"`
	Emojis         []Emoji                 `json:"emojis"`
	Fields         []Field                 `json:"fields"`
}

type Emoji struct {
	Shortcode       string `json:"shortcode"`
	URL             string `json:"url"`
	StaticURL       string `json:"static_url"`
	VisibleInPicker bool   `json:"visible_in_picker"`
}

type Field struct {
	Name       string                  `json:"name"`
	Value      string                  `json:"value"`
	VerifiedAt optional.Option[string] `json:"verified_at"`
}

const (
	DefaultAvatarPath = "/images/person-300.jpg"
	DefaultHeaderPath = "/images/blank.png"

	createdAtLayout = "2006-01-02T15:04:05.000Z"
)

// AccountFactory builds accounts from stored contacts.
type AccountFactory struct {
	contacts *db.ContactModel
	posts    *db.PostModel
	baseURL  BaseURL
}

func NewAccountFactory(contacts *db.ContactModel, posts *db.PostModel, baseURL BaseURL) *AccountFactory {
	return &AccountFactory{contacts: contacts, posts: posts, baseURL: baseURL}
}

// FromURIID builds the account of the contact identified by uriID.
func (f *AccountFactory) FromURIID(ctx context.Context, uriID int64) (*Account, error) {
	c, err := f.contacts.GetByURIID(ctx, uriID)
	if err != nil {
		return nil, err
	}

	account := &Account{
		ID:           strconv.FormatInt(c.URIID, 10),
		Username:     c.Nick,
		Acct:         f.acct(c),
		DisplayName:  c.Name,
		Locked:       c.ManuallyApprove,
		Bot:          c.ContactType == db.ContactTypeNews,
		Discoverable: !c.Hidden,
		Group:        c.ContactType == db.ContactTypeCommunity,
		CreatedAt:    c.Created.UTC().Format(createdAtLayout),
		Note:         renderMarkdown(c.About),
		URL:          c.URL,
		Avatar:       f.orDefault(c.Avatar, DefaultAvatarPath),
		Header:       f.orDefault(c.Header, DefaultHeaderPath),
		Emojis:       []Emoji{},
		Fields:       []Field{},
	}
	if account.DisplayName == "" {
		account.DisplayName = c.Nick
	}
	account.AvatarStatic = account.Avatar
	account.HeaderStatic = account.Header

	if c.Self && c.UID != 0 {
		if account.FollowersCount, err = f.contacts.CountRelations(ctx, c.UID, db.RelFollower, db.RelFriend); err != nil {
			return nil, fmt.Errorf("failed to count followers: %w", err)
		}
		if account.FollowingCount, err = f.contacts.CountRelations(ctx, c.UID, db.RelSharing, db.RelFriend); err != nil {
			return nil, fmt.Errorf("failed to count following: %w", err)
		}
	}

	if account.StatusesCount, err = f.posts.CountByAuthor(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	last, err := f.posts.LastCreatedByAuthor(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if last.Has() {
		account.LastStatusAt = optional.Some(last.Value().Format("2006-01-02"))
	}

	return account, nil
}

// acct is the bare nickname for local accounts and nick@host otherwise.
func (f *AccountFactory) acct(c *db.Contact) string {
	if c.Self || c.Addr == "" {
		return c.Nick
	}
	if _, host, ok := strings.Cut(c.Addr, "@"); ok && strings.EqualFold(host, f.baseURL.Host()) {
		return c.Nick
	}
	return c.Addr
}

func (f *AccountFactory) orDefault(url, path string) string {
	if url != "" {
		return url
	}
	return f.baseURL.String() + path
}
