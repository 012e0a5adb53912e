package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fedinstance/ap"
	"fedinstance/base"
	"fedinstance/config"
	"fedinstance/db"
	"fedinstance/etc"
	"fedinstance/mastodon"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	settings, err := config.NewSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newApp(settings).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(settings *config.Settings) *cli.App {
	return &cli.App{
		Name:    "fedinstance",
		Usage:   "Friendica compatible instance metadata",
		Version: etc.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   settings.ConfigPath,
				Usage:   "site configuration file (INI)",
			},
			&cli.StringFlag{
				Name:  "database",
				Value: settings.DatabasePath,
				Usage: "SQLite database file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: settings.LogLevel,
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: settings.LogFormat,
				Usage: "console or json",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "setup",
				Usage:  "Create the administrator account",
				Action: runSetup,
			},
			{
				Name:   "instance",
				Usage:  "Print the Mastodon instance entity as JSON",
				Action: runInstance,
			},
			{
				Name:   "nodeinfo",
				Usage:  "Recompute the usage statistics once",
				Action: runNodeinfo,
			},
			{
				Name:  "cron",
				Usage: "Recompute the usage statistics periodically",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Value: settings.CronInterval,
						Usage: "time between two updates",
					},
				},
				Action: runCron,
			},
			serverCommand(),
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintf(c.App.Writer, "%s %s\n", etc.ProductName, etc.Version)
					return err
				},
			},
		},
	}
}

// runtime holds what every command opens.
type runtime struct {
	logger     *zap.Logger
	db         *db.DB
	cfg        *config.File
	configPath string
}

func openRuntime(c *cli.Context) (*runtime, error) {
	logger, err := base.NewLogger(c.String("log-level"), c.String("log-format"))
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	dbconn, err := db.InitDB(c.String("database"))
	if err != nil {
		return nil, err
	}
	logger.Debug("database connected", zap.String("path", c.String("database")))

	return &runtime{logger: logger, db: dbconn, cfg: cfg, configPath: c.String("config")}, nil
}

func (rt *runtime) Close() {
	rt.db.Close()
	_ = rt.logger.Sync()
}

func (rt *runtime) nodeinfoUpdater() *ap.NodeinfoUpdater {
	return ap.NewNodeinfoUpdater(rt.cfg, db.NewUserModel(rt.db, rt.cfg), db.NewPostModel(rt.db), db.NewKeyValueModel(rt.db), rt.logger)
}

func (rt *runtime) instanceSources() (mastodon.InstanceSources, error) {
	baseURL, err := config.BaseURLFromConfig(rt.cfg)
	if err != nil {
		return mastodon.InstanceSources{}, err
	}
	return mastodon.InstanceSources{
		Config:   rt.cfg,
		BaseURL:  baseURL,
		Database: rt.db,
		Admins:   db.NewUserModel(rt.db, rt.cfg),
		Banner:   mastodon.NewHeader(rt.cfg),
		Accounts: mastodon.NewAccountFactory(db.NewContactModel(rt.db), db.NewPostModel(rt.db), baseURL),
		Version:  etc.Version,
		Logger:   rt.logger,
	}, nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runInstance(c *cli.Context) error {
	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	src, err := rt.instanceSources()
	if err != nil {
		return err
	}
	configuration, err := mastodon.NewConfiguration(rt.cfg)
	if err != nil {
		return err
	}

	instance, err := mastodon.NewInstance(c.Context, src, mastodon.RulesFromConfig(rt.cfg), configuration)
	if err != nil {
		return err
	}
	return writeJSON(c, instance)
}

func runNodeinfo(c *cli.Context) error {
	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	usage, err := rt.nodeinfoUpdater().Update(c.Context)
	if err != nil {
		return err
	}
	return writeJSON(c, usage)
}

func runCron(c *cli.Context) error {
	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	updater := rt.nodeinfoUpdater()
	if !updater.Enabled() {
		return errors.New("system.nodeinfo is disabled, nothing to do")
	}
	interval := c.Duration("interval")
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobQueue := base.NewJobQueue(60, rt.logger)
	jobQueue.Start(ctx)
	update := func(ctx context.Context) error {
		_, err := updater.Update(ctx)
		return err
	}

	enqueue := func() {
		if err := jobQueue.Enqueue("nodeinfo", update); err != nil {
			rt.logger.Warn("nodeinfo update skipped", zap.Error(err))
		}
	}

	rt.logger.Info("cron started", zap.Duration("interval", interval))
	enqueue()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			jobQueue.Wait()
			rt.logger.Info("cron stopped")
			return nil
		case <-ticker.C:
			enqueue()
		}
	}
}
