package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/bookly"
	blocklist "github.com/goliatone/bookly/adapters/redis"
	"github.com/goliatone/bookly/config"
	"github.com/goliatone/bookly/mailer"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	goredis "github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

type App struct {
	config *config.AppConfig
	logger *glog.BaseLogger
	db     *bun.DB
	redis  *goredis.Client
	repo   bookly.RepositoryManager
	auth   *bookly.Auther
	mail   *mailer.Dispatcher
	srv    router.Server[*fiber.App]
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("bookly"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence setup failed", "error", err)
		os.Exit(1)
	}

	if err := WithMailer(ctx, app); err != nil {
		lgr.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		lgr.Error("http setup failed", "error", err)
		os.Exit(1)
	}

	app.srv.Serve(cfg.Addr)

	WaitExitSignal()

	app.mail.Stop()

	if err := app.redis.Close(); err != nil {
		lgr.Error("redis close", "error", err)
	}

	if err := app.db.Close(); err != nil {
		lgr.Error("database close", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.config

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if cfg.Database.RunMigrationsOnStart {
		if err := runMigrations(ctx, db, app.GetLogger("migrations")); err != nil {
			return err
		}
	}

	repo := bookly.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	app.db = db
	app.repo = repo

	return nil
}

func runMigrations(ctx context.Context, db *bun.DB, lgr glog.Logger) error {
	src, err := fs.Sub(bookly.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(src); err != nil {
		return err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		lgr.Info("database schema up to date")
	} else {
		lgr.Info("applied migrations", "group", group.String())
	}

	return nil
}

func WithMailer(ctx context.Context, app *App) error {
	cfg := app.config

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	dispatcher := mailer.NewDispatcher(sender,
		mailer.WithQueueSize(cfg.MailQueueSize),
		mailer.WithLogger(app.GetLogger("mailer")),
	)
	dispatcher.Start(ctx)

	app.mail = dispatcher

	return nil
}

// userTrackerAdapter narrows the users repository to the provider's
// tracking interface.
type userTrackerAdapter struct {
	users bookly.Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*bookly.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *bookly.User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSucccessfulLogin(ctx context.Context, user *bookly.User) error {
	return a.users.TrackSucccessfulLogin(ctx, user)
}

func WithHTTPServer(ctx context.Context, app *App) error {
	cfg := app.config

	app.redis = goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	revocations := blocklist.NewBlocklist(app.redis)

	provider := bookly.NewUserProvider(userTrackerAdapter{users: app.repo.Users()})
	provider.WithLogger(app.GetLogger("auth:prv"))

	auther := bookly.NewAuthenticator(provider, cfg).
		WithLogger(app.GetLogger("auth")).
		WithBlocklist(revocations)
	app.auth = auther

	actionTokens := bookly.NewActionTokenService(
		[]byte(cfg.GetSigningKey()),
		jwt.GetSigningMethod(cfg.GetSigningMethod()),
		cfg.GetActionTokenSalt(),
		cfg.GetActionTokenMaxAge(),
		app.GetLogger("auth:action"),
	)

	guard := bookly.NewTokenGuard(cfg, auther.TokenService(), auther.Blocklist(), false)
	refreshGuard := bookly.NewTokenGuard(cfg, auther.TokenService(), auther.Blocklist(), true)

	policy := bookly.NewAccessPolicy(app.repo.Users()).
		WithContextKey(cfg.GetContextKey()).
		WithLogger(app.GetLogger("auth:policy"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	authCtrl := bookly.NewAuthController(bookly.AuthControllerConfig{
		Auth:         auther,
		Tokens:       auther.TokenService(),
		Policy:       policy,
		Guard:        guard,
		RefreshGuard: refreshGuard,
		Register: bookly.NewRegisterUserHandler(app.repo, actionTokens, app.mail, cfg.GetDomain()).
			WithLogger(app.GetLogger("auth:signup")),
		Verify: bookly.NewVerifyAccountHandler(app.repo, actionTokens).
			WithLogger(app.GetLogger("auth:verify")),
		ResetInit: bookly.NewInitializePasswordResetHandler(app.repo, actionTokens, app.mail, cfg.GetDomain()).
			WithLogger(app.GetLogger("auth:reset")),
		ResetFinal: bookly.NewFinalizePasswordResetHandler(app.repo, actionTokens).
			WithLogger(app.GetLogger("auth:reset")),
		ContextKey: cfg.GetContextKey(),
		Logger:     app.GetLogger("auth:ctrl"),
	})
	authCtrl.RegisterRoutes(srv.Router().Group("/api/v1/auth"))

	booksCtrl := bookly.NewBooksController(bookly.BooksControllerConfig{
		Books:  app.repo.Books(),
		Guard:  guard,
		Policy: policy,
		Logger: app.GetLogger("books"),
	})
	booksCtrl.RegisterRoutes(srv.Router().Group("/api/v1/books"))

	reviewsCtrl := bookly.NewReviewsController(bookly.ReviewsControllerConfig{
		Reviews: app.repo.Reviews(),
		Books:   app.repo.Books(),
		Guard:   guard,
		Policy:  policy,
		Logger:  app.GetLogger("reviews"),
	})
	reviewsCtrl.RegisterRoutes(srv.Router().Group("/api/v1/reviews"))

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
