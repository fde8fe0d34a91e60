package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/config"
	"github.com/dmitrijs2005/pinboard/internal/client/services"
	"github.com/dmitrijs2005/pinboard/internal/filex"
	"github.com/dmitrijs2005/pinboard/internal/logging"
	"go.uber.org/multierr"
)

type App struct {
	config   *config.Config
	session  services.SessionStore
	cache    services.EngagementCache
	pins     services.PinService
	comments services.CommentService
	feed     services.Feed
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	closers []io.Closer
}

// NewApp opens the local database and the backend client and builds the
// services on top of them. Close releases both.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("prepare database dir: %w", err)
	}
	db, err := client.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout,
		client.WithRateLimit(c.RequestsPerSecond, burst(c.RequestsPerSecond)),
		client.WithLogger(logger.With("component", "http")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, db, api, logger)
	a.reader = bufio.NewReader(os.Stdin)
	a.out = os.Stdout
	return a, nil
}

func newApp(c *config.Config, db *sql.DB, api client.Client, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	cache := services.NewEngagementCache(api, logger)
	session := services.NewSessionStore(api, services.NewReferenceStore(db, c.SessionTTL), cache, logger)
	pins := services.NewPinService(api, session, cache, c.ServerURL, logger)

	return &App{
		config:   c,
		session:  session,
		cache:    cache,
		pins:     pins,
		comments: services.NewCommentService(api, session, logger),
		feed:     services.NewFeed(pins),
		logger:   logger,
		closers:  []io.Closer{api, db},
	}
}

func burst(rps float64) int {
	if rps <= 0 {
		return 0
	}
	return max(1, int(math.Ceil(rps)))
}

// Close releases the backend client and the database.
func (a *App) Close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c.Close())
	}
	a.closers = nil
	return err
}

// Run restores the persisted session and serves commands from stdin until
// the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "close failed", "err", err)
		}
	}()

	printlnFn("Welcome to pinboard (type 'help' for commands)")
	if ident, ok := a.session.RestoreSession(ctx); ok {
		printlnFn(fmt.Sprintf("Logged in as %s", ident.DisplayName))
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	if me := a.session.Current(); me != nil {
		return fmt.Sprintf("(%s)", me.DisplayName)
	}
	return ""
}
