package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus publishes and subscribes to topics.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects the transport. An empty URL runs an in-process bus.
type Config struct {
	URL        string
	QueueGroup string
	AckWait    time.Duration
}

const (
	defaultQueueGroup = "points"
	defaultAckWait    = 30 * time.Second
)

// natsBus implements EventBus over NATS JetStream.
type natsBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	js         jetstream.JetStream
	natsConn   *nc.Conn
	logger     *slog.Logger
}

// memoryBus implements EventBus with a watermill go channel.
type memoryBus struct {
	*gochannel.GoChannel
}

// NewEventBus connects to NATS JetStream, or returns an in-process bus when
// cfg.URL is empty. The points stream is created or updated on connect.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watermillLogger := watermill.NewSlogLogger(logger)

	if cfg.URL == "" {
		logger.Info("No NATS URL configured; using in-process event bus")
		return &memoryBus{GoChannel: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger)}, nil
	}
	if cfg.QueueGroup == "" {
		cfg.QueueGroup = defaultQueueGroup
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = defaultAckWait
	}

	natsOptions := []nc.Option{
		nc.Name(cfg.QueueGroup),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(time.Second),
	}

	natsConn, err := nc.Connect(cfg.URL, natsOptions...)
	if err != nil {
		logger.Error("Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	if err := InitializeStreams(ctx, js, logger); err != nil {
		natsConn.Close()
		return nil, err
	}

	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{
		AutoProvision: false,
		DurablePrefix: cfg.QueueGroup,
		DurableCalculator: func(prefix, topic string) string {
			return DurableName(prefix, topic)
		},
		SubscribeOptions: []nc.SubOpt{
			nc.DeliverAll(),
			nc.AckExplicit(),
		},
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: cfg.QueueGroup,
			SubscribersCount: 1,
			AckWaitTimeout:   cfg.AckWait,
			Unmarshaler:      marshaler,
			NatsOptions:      natsOptions,
			JetStream:        jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		natsConn.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Connected to NATS JetStream", attr.String("url", cfg.URL))
	return &natsBus{
		publisher:  publisher,
		subscriber: subscriber,
		js:         js,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

func (eb *natsBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message", attr.String("topic", topic), attr.Error(err))
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to subject", attr.String("subject", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	return messages, nil
}

// DurableName derives a JetStream consumer name for topic. Consumer names
// may not contain dots.
func DurableName(prefix, topic string) string {
	return prefix + "_" + strings.NewReplacer(".", "_", "*", "any", ">", "all").Replace(topic)
}

// Close closes all NATS and Watermill resources.
func (eb *natsBus) Close() error {
	if err := eb.subscriber.Close(); err != nil {
		eb.logger.Error("Error closing NATS subscriber", attr.Error(err))
	}
	if err := eb.publisher.Close(); err != nil {
		eb.logger.Error("Error closing NATS publisher", attr.Error(err))
	}
	eb.natsConn.Close()
	return nil
}
