package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pointsevents "github.com/Black-And-White-Club/poker-points/app/events/points"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamConfigs lists the JetStream streams the service needs.
func StreamConfigs() []jetstream.StreamConfig {
	return []jetstream.StreamConfig{
		{
			Name:      pointsevents.StreamName,
			Subjects:  []string{pointsevents.StreamSubject},
			Retention: jetstream.LimitsPolicy,
			Storage:   jetstream.FileStorage,
			MaxAge:    14 * 24 * time.Hour,
		},
	}
}

// InitializeStreams creates or updates the service's JetStream streams.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	for _, streamConfig := range StreamConfigs() {
		if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			logger.Error("Failed to create JetStream stream", attr.String("stream", streamConfig.Name), attr.Error(err))
			return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
		}
		logger.Info("JetStream stream ready", attr.String("stream", streamConfig.Name))
	}
	return nil
}
