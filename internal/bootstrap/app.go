package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chathdi/internal/config"
	"chathdi/internal/model"
	postgresClient "chathdi/internal/platform/postgres"
	rabbitmqClient "chathdi/internal/platform/rabbitmq"
	redisClient "chathdi/internal/platform/redis"
	"chathdi/internal/repository"
	"chathdi/internal/worker"
)

type App struct {
	Config             *config.Config
	Postgres           *gorm.DB
	Redis              *redis.Client
	MQConn             *amqp.Connection
	ConversationWorker *worker.ConversationPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := postgresClient.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	if err := postgresClient.EnsureVectorExtension(db); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Document{},
		&model.DocumentSection{},
		&model.Conversation{},
		&model.Project{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}
	if err := postgresClient.EnsureSearchIndexes(db); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	conversationRepo := repository.NewConversationRepository(db)
	conversationWorker := worker.NewConversationPersistWorker(mqConn, conversationRepo, cfg.RabbitMQ.ConversationPersistQueue)
	if err := conversationWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start conversation worker failed: %w", err)
	}

	return &App{
		Config:             cfg,
		Postgres:           db,
		Redis:              redisCli,
		MQConn:             mqConn,
		ConversationWorker: conversationWorker,
		StartedAt:          time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ConversationWorker != nil {
		a.ConversationWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Postgres != nil {
		sqlDB, err := a.Postgres.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
