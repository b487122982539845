// Package bootstrap wires configuration into the texting runtime shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storekd-sms/internal/adapters/db/postgres"
	"storekd-sms/internal/adapters/events/kafka"
	"storekd-sms/internal/adapters/provider"
	"storekd-sms/internal/adapters/queue/memory"
	"storekd-sms/internal/adapters/queue/rabbitmq"
	redisqueue "storekd-sms/internal/adapters/queue/redis"
	"storekd-sms/internal/config"
	"storekd-sms/internal/events"
	"storekd-sms/internal/ports"
	"storekd-sms/internal/sms"
	"storekd-sms/internal/textmessages"
)

// Queue connection names.
const (
	ConnRabbitMQ = "rabbitmq"
	ConnRedis    = "redis"
	ConnMemory   = "memory"
)

// Runtime holds the wired texting components.
type Runtime struct {
	Manager *sms.Manager
	Kinds   *sms.Kinds
	Queues  *sms.Queues
	Events  *events.Dispatcher
	Memory  *memory.Queue
	Redis   *redisqueue.Queue

	cfg     config.Config
	log     *zap.SugaredLogger
	closers []func()
}

// New connects the configured queue, event and storage backends and builds the Manager.
func New(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Runtime, error) {
	rt := &Runtime{
		Kinds:  textmessages.Register(sms.NewKinds()),
		Queues: sms.NewQueues(cfg.Queue.Connection),
		Events: events.NewDispatcher(log),
		Memory: memory.New(cfg.Queue.Name),
		Redis:  redisqueue.New(cfg.RedisAddr, cfg.Queue.Name, log),
		cfg:    cfg,
		log:    log,
	}
	rt.closers = append(rt.closers, func() { _ = rt.Redis.Close() })
	rt.Queues.Add(ConnMemory, rt.Memory).Add(ConnRedis, rt.Redis)

	if cfg.Queue.Connection == ConnRabbitMQ {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.Queue.Name)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		rt.closers = append(rt.closers, pub.Close)
		rt.Queues.Add(ConnRabbitMQ, pub)
	}

	if len(cfg.KafkaBrokers) > 0 {
		sent := kafka.NewSentPublisher(cfg.KafkaBrokers, cfg.SentTopic, log)
		rt.closers = append(rt.closers, func() { _ = sent.Close() })
		rt.Events.OnSent(sent.Sent)
	}

	rt.Manager = sms.NewManager(cfg.SMS, provider.Register(sms.NewDrivers()),
		sms.WithEvents(rt.Events),
		sms.WithQueue(rt.Queues, rt.Kinds),
		sms.WithLogger(log),
	)

	if cfg.DatabaseURL != "" {
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		if err := rt.loadTexters(ctx, store); err != nil {
			rt.Close()
			return nil, err
		}
	}

	return rt, nil
}

func (rt *Runtime) loadTexters(ctx context.Context, store ports.TexterStore) error {
	texters, err := store.LoadTexters(ctx)
	if err != nil {
		return fmt.Errorf("load texters: %w", err)
	}
	rt.Manager.AddTexters(texters)
	rt.log.Infow("texters loaded from store", "count", len(texters))
	return nil
}

// Consumer returns the JobConsumer for the configured queue connection.
func (rt *Runtime) Consumer() (ports.JobConsumer, error) {
	switch rt.cfg.Queue.Connection {
	case ConnRabbitMQ:
		c, err := rabbitmq.NewConsumer(rt.cfg.AMQPURL, rt.log, rabbitmq.WithPrefetch(rt.cfg.Queue.Prefetch))
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq consumer: %w", err)
		}
		rt.closers = append(rt.closers, c.Close)
		return c, nil
	case ConnRedis:
		return rt.Redis, nil
	case ConnMemory:
		return rt.Memory, nil
	}
	return nil, fmt.Errorf("queue connection %q has no consumer", rt.cfg.Queue.Connection)
}

// Worker builds a Worker over the Manager with the configured defaults.
func (rt *Runtime) Worker() *sms.Worker {
	return sms.NewWorker(rt.Manager, rt.Kinds, rt.Queues, rt.cfg.Queue.Tries, rt.cfg.Queue.Timeout, rt.log)
}

// Close releases every backend in reverse order.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
