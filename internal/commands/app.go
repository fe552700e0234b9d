package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/config"
	"github.com/balkashynov/todus/internal/db"
	"github.com/balkashynov/todus/internal/engine"
	"github.com/balkashynov/todus/internal/logging"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/notify"
	"github.com/balkashynov/todus/internal/repository"
	"github.com/balkashynov/todus/internal/trash"
)

// app is everything a command needs, built once per invocation
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	db      *gorm.DB
	prefs   *db.PrefStore
	repo    repository.TaskRepository
	clock   clock.Clock
	engine  *engine.Engine
	sweeper *trash.Sweeper
}

// openApp loads the configuration and wires the stores, the sink and the
// engine. The preference store always lives in the local database; tasks
// live there too unless api.base_url is set.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level)

	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		logger: logger,
		db:     gdb,
		prefs:  db.NewPrefStore(gdb),
		clock:  clock.System{},
	}

	if cfg.Remote() {
		a.repo, err = repository.NewClient(cfg.API.BaseURL, apiToken(cfg, logger), repository.WithTimeout(cfg.API.Timeout))
		logger.Debug("using remote task service", "url", cfg.API.BaseURL)
	} else {
		a.repo, err = db.NewLocalRepository(gdb, a.clock)
		logger.Debug("using local task store", "path", cfg.DBPath)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = &engine.Engine{
		Repo:        a.repo,
		Prefs:       a.prefs,
		Sink:        buildSink(ctx, cfg, logger),
		Clock:       a.clock,
		Logger:      logger,
		Concurrency: cfg.Apply.Concurrency,
	}
	a.sweeper = &trash.Sweeper{Repo: a.repo, Prefs: a.prefs, Clock: a.clock, Logger: logger}
	return a, nil
}

// apiToken picks the configured token, or the session saved by login
func apiToken(cfg *config.Config, logger *log.Logger) string {
	if cfg.API.Token != "" {
		return cfg.API.Token
	}
	token, err := repository.LoadToken(cfg.API.TokenFile)
	if err != nil {
		logger.Warn("ignoring saved session", "err", err)
		return ""
	}
	if token == "" {
		logger.Debug("no token configured, run `todus login`")
	}
	return token
}

// buildSink returns the configured notification sink. A calendar sink that
// cannot be set up falls back to the terminal so reminders are not lost.
func buildSink(ctx context.Context, cfg *config.Config, logger *log.Logger) notify.Sink {
	switch cfg.Notify.Sink {
	case config.SinkNone:
		return notify.Discard
	case config.SinkCalendar:
		sink, err := calendarSink(ctx, cfg)
		if err == nil {
			return sink
		}
		logger.Warn("calendar sink unavailable, using terminal", "err", err)
	}
	return notify.NewTerminalSink(os.Stdout)
}

func calendarSink(ctx context.Context, cfg *config.Config) (notify.Sink, error) {
	oauthConfig, err := notify.OAuthConfig(cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, err
	}
	client, err := notify.CalendarClient(ctx, oauthConfig, cfg.Calendar.TokenFile)
	if err != nil {
		return nil, err
	}
	srv, err := notify.NewCalendarService(ctx, client)
	if err != nil {
		return nil, err
	}
	sink, err := notify.NewCalendarSink(srv, cfg.Calendar.ID)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// Close releases the database
func (a *app) Close() {
	if err := db.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", "err", err)
	}
}

// withApp wraps a command function to build the app first
func withApp(fn func(*cobra.Command, []string, *app)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd.Context())
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			return
		}
		defer a.Close()
		fn(cmd, args, a)
	}
}

// parseID parses a task or category id argument
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid ID '%s'", arg)
	}
	return id, nil
}

// categoryFlag resolves the --category flag by name or id. Nil when unset.
func (a *app) categoryFlag(ctx context.Context, cmd *cobra.Command) (*models.Category, error) {
	ref, _ := cmd.Flags().GetString("category")
	if ref == "" {
		return nil, nil
	}
	return lookupCategory(ctx, a, ref)
}
