package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"fedinstance/ap"
	"fedinstance/config"
	"fedinstance/db"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	keyBits           = 2048
)

func runSetup(c *cli.Context) error {
	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	return setupAdmin(c.Context, rt, c.App.Reader, c.App.Writer)
}

// setupAdmin interactively creates the administrator and its self contact.
func setupAdmin(ctx context.Context, rt *runtime, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	prompt := func(label string) (string, error) {
		fmt.Fprintln(out, label)
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprintln(out, "--- Setting up ---")

	if _, ok := rt.cfg.Value("system", "url"); !ok {
		raw, err := prompt("Enter the public URL of this server:")
		if err != nil {
			return err
		}
		if _, err := config.ParseBaseURL(raw); err != nil {
			return err
		}
		rt.cfg.Set("system", "url", raw)
	}
	baseURL, err := config.BaseURLFromConfig(rt.cfg)
	if err != nil {
		return err
	}

	nickname, err := prompt("Enter your nickname:")
	if err != nil {
		return err
	}
	if nickname == "" || strings.ContainsAny(nickname, "@/ ") {
		return fmt.Errorf("invalid nickname %q", nickname)
	}
	users := db.NewUserModel(rt.db, rt.cfg)
	if _, err := users.GetByNickname(ctx, nickname); err == nil {
		return fmt.Errorf("nickname %s is already taken", nickname)
	} else if !errors.Is(err, db.ErrNotExist) {
		return err
	}

	displayName, err := prompt("Enter your display name:")
	if err != nil {
		return err
	}
	if displayName == "" {
		displayName = nickname
	}

	email, err := prompt("Enter your email address:")
	if err != nil {
		return err
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address %q", email)
	}

	bio, err := prompt("Enter your bio:")
	if err != nil {
		return err
	}

	var password string
	for {
		password, err = prompt("Enter a password for the application:")
		if err != nil {
			return err
		}
		if len(password) < minPasswordLength {
			fmt.Fprintf(out, "Password must be at least %d characters long. Please try again.\n", minPasswordLength)
			continue
		}
		break
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}

	pubKey, prvKey, err := db.GenerateRSAKeyPair(keyBits)
	if err != nil {
		return err
	}

	// The pool holds a single connection, so this runs before BeginTxx.
	actor := ap.LocalActor(baseURL.String(), nickname)
	uriID, err := db.NewItemURIModel(rt.db).IDByURI(ctx, actor.GetID().String())
	if err != nil {
		return err
	}

	tx, err := rt.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	user := &db.User{
		Nickname: nickname,
		Username: displayName,
		Email:    email,
		Password: string(hash),
		PubKey:   pubKey,
		PrvKey:   prvKey,
		Verified: true,
	}
	if err := users.CreateTx(ctx, tx, user); err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}

	contact := &db.Contact{
		UID:         user.UID,
		URIID:       uriID,
		Self:        true,
		Nick:        nickname,
		Name:        displayName,
		Addr:        ap.Addr(nickname, baseURL.Host()),
		URL:         actor.GetLink().String(),
		About:       bio,
		ContactType: db.ContactTypePerson,
	}
	if err := db.NewContactModel(rt.db).CreateTx(ctx, tx, contact); err != nil {
		return fmt.Errorf("could not create self contact: %w", err)
	}

	admins, err := users.AdminEmailList(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(admins, strings.ToLower(email)) {
		rt.cfg.Set("config", "admin_email", strings.Join(append(admins, email), ","))
	}
	if err := rt.cfg.SaveTo(rt.configPath); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit administrator: %w", err)
	}

	rt.logger.Info("administrator created", zap.String("nickname", nickname), zap.Int64("uid", user.UID))
	fmt.Fprintln(out, "Administrator created successfully!")
	return nil
}
