// Package app wires configuration, storage, locking and the Telegram transport into a runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/roadbuddy/quizbot/core/bootstrap"
	"github.com/roadbuddy/quizbot/core/logger"
	coretelegram "github.com/roadbuddy/quizbot/core/telegram"
	"github.com/roadbuddy/quizbot/core/telegram/sender"
	"github.com/roadbuddy/quizbot/internal/chatlock"
	"github.com/roadbuddy/quizbot/internal/config"
	"github.com/roadbuddy/quizbot/internal/flow"
	"github.com/roadbuddy/quizbot/internal/message"
	"github.com/roadbuddy/quizbot/internal/questions"
	"github.com/roadbuddy/quizbot/internal/session"
	"github.com/roadbuddy/quizbot/internal/store"
	"github.com/roadbuddy/quizbot/internal/store/memstore"
	"github.com/roadbuddy/quizbot/internal/store/sqlstore"
)

// Conversation is the flow surface used by the Telegram handlers.
type Conversation interface {
	Run(ctx context.Context, chatID int64) error
	RunWithToken(ctx context.Context, chatID int64, token string) error
	ResetToOnboarding(ctx context.Context, chatID int64) error
	ShowScore(ctx context.Context, chatID int64) error
}

// App owns the bot's long-lived resources.
type App struct {
	cfg *config.Config

	db    *sqlx.DB
	redis *redis.Client
	bot   *tele.Bot

	conversation Conversation
	messenger    message.Messenger
	formatter    *message.Formatter
}

// Bootstrap initialises logging, storage and the bot for cfg.
func Bootstrap(cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: res.DB}
	if err := a.init(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	templates, err := message.LoadTemplates(a.cfg.Messages.TemplatesPath)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if a.formatter, err = message.NewFormatter(templates); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	locker, err := a.buildLocker()
	if err != nil {
		return err
	}

	if a.bot, err = coretelegram.NewBot(a.cfg.CoreConfig()); err != nil {
		return err
	}
	a.messenger = sender.New(a.bot, sender.Options{MaxRetries: a.cfg.Telegram.SendRetries})

	st := a.buildStore()
	sessions, err := session.NewManager(session.Options{
		Questions: questions.New(questions.Options{
			BaseURL: a.cfg.QuestionAPI.BaseURL,
			Timeout: time.Duration(a.cfg.QuestionAPI.TimeoutSeconds) * time.Second,
		}),
		Store:     st,
		Messenger: a.messenger,
		Formatter: a.formatter,
		City:      a.cfg.QuestionAPI.City,
		Retry: session.RetryPolicy{
			MaxAttempts:  a.cfg.Quiz.MaxAttempts,
			InitialDelay: time.Duration(a.cfg.Quiz.InitialDelayMS) * time.Millisecond,
			MaxDelay:     time.Duration(a.cfg.Quiz.MaxDelayMS) * time.Millisecond,
			Multiplier:   a.cfg.Quiz.Multiplier,
		},
	})
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	runner, err := flow.NewRunner(flow.Options{
		Store:     st,
		Locker:    locker,
		Questions: sessions,
		Messenger: a.messenger,
		Formatter: a.formatter,
	})
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.conversation = runner

	logger.Info(context.Background(), logger.CompApp, "app.wired",
		slog.String("driver", a.cfg.Database.Driver),
		slog.String("lock", a.cfg.Lock.Backend),
		slog.String("city", a.cfg.QuestionAPI.City),
	)
	return nil
}

func (a *App) buildStore() store.Store {
	if a.db == nil {
		return memstore.New()
	}
	return sqlstore.New(a.db)
}

func (a *App) buildLocker() (chatlock.Locker, error) {
	if a.cfg.Lock.Backend != config.LockRedis {
		return chatlock.NewMemory(a.cfg.LockWait()), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("app: ping redis %s: %w", a.cfg.Redis.Addr, err)
	}
	logger.Info(ctx, logger.CompLock, "lock.redis_connected", slog.String("addr", a.cfg.Redis.Addr))

	return chatlock.NewRedis(a.redis, chatlock.RedisOptions{
		Prefix: a.cfg.Lock.Prefix,
		TTL:    a.cfg.LockTTL(),
		Wait:   a.cfg.LockWait(),
	}), nil
}

func (a *App) close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// TelegramRunOptions assembles the routes and lifecycle hooks of the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := a.registry()
	return coretelegram.RunOptions{
		Config:      core,
		Bot:         a.bot,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      a.routes(reg),
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			if err := a.close(); err != nil {
				logger.Warn(ctx, logger.CompApp, "app.close_failed", logger.Err(err))
			}
			return nil
		},
	}, nil
}

