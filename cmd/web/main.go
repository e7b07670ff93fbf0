package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/apexfit/apexfit/internal/auth"
	"github.com/apexfit/apexfit/internal/catalog"
	"github.com/apexfit/apexfit/internal/envstruct"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/feed"
	"github.com/apexfit/apexfit/internal/kv"
	"github.com/apexfit/apexfit/internal/logging"
	"github.com/apexfit/apexfit/internal/pprofserver"
	"github.com/apexfit/apexfit/internal/profile"
	"github.com/apexfit/apexfit/internal/session"
	"github.com/apexfit/apexfit/internal/sqlite"
	"github.com/apexfit/apexfit/internal/workout"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	otp            *auth.OTPService
	catalog        *catalog.Repository
	profiles       *profile.Service
	feed           *feed.Service
	workouts       *workout.Service
	sessions       *session.Manager
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"APEXFIT_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"APEXFIT_SQLITE_URL" envDefault:"./apexfit.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"APEXFIT_PPROF_ADDR" envDefault:""`
	// SecureCookies disables the Secure cookie attribute for plain HTTP development setups.
	SecureCookies bool `env:"APEXFIT_SECURE_COOKIES" envDefault:"true"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	documents := kv.NewSQLiteStore(db)
	exercises := catalog.NewRepository(db, logger)
	sessions := session.NewManager(documents, time.Now, logger)
	defer sessions.Shutdown()

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db, cfg.SecureCookies),
		otp:            auth.NewOTPService(time.Now, logger),
		catalog:        exercises,
		profiles:       profile.NewService(documents, time.Now, logger),
		feed:           feed.NewService(documents, time.Now, logger),
		workouts:       workout.NewService(db, exercises, logger),
		sessions:       sessions,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database, secureCookies bool) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = secureCookies
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
