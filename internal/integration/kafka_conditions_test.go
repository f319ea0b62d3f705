//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/powder-radar-service/internal/adapter/kafka"
	"github.com/couchcryptid/powder-radar-service/internal/config"
	"github.com/couchcryptid/powder-radar-service/internal/observability"
	"github.com/couchcryptid/powder-radar-service/internal/source"
	"github.com/couchcryptid/powder-radar-service/internal/synth"
)

const testConditionsTopic = "test-resort-conditions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("powder-radar-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type snapshot struct {
	ResortID       string  `json:"resortId"`
	ResortName     string  `json:"resortName"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	RecentSnowfall float64 `json:"recentSnowfall"`
	SnowDepth      float64 `json:"snowDepth"`
}

func publishSnapshots(ctx context.Context, t *testing.T, broker string, snaps []snapshot) {
	t.Helper()

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testConditionsTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(snaps))
	for _, s := range snaps {
		payload, err := json.Marshal(s)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(s.ResortID),
			Value: payload,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

// TestConditionsFeedRoundTrip publishes resort snapshots to Kafka and
// verifies the feed converges on the latest point per resort.
func TestConditionsFeedRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testConditionsTopic)

	publishSnapshots(ctx, t, broker, []snapshot{
		{ResortID: "loon", ResortName: "Loon Mountain", Lat: 44.0364, Lon: -71.6214, RecentSnowfall: 3.0, SnowDepth: 30},
		{ResortID: "cannon", ResortName: "Cannon Mountain", Lat: 44.1567, Lon: -71.6984, RecentSnowfall: 5.0, SnowDepth: 44},
		// A second loon snapshot must replace the first.
		{ResortID: "loon", ResortName: "Loon Mountain", Lat: 44.0364, Lon: -71.6214, RecentSnowfall: 7.5, SnowDepth: 36},
	})

	cfg := &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaConditionsTopic: testConditionsTopic,
		KafkaGroupID:         fmt.Sprintf("test-feed-%d", time.Now().UnixNano()),
	}

	feed := kafka.NewFeed(cfg, discardLogger())
	t.Cleanup(func() { _ = feed.Close() })

	feedCtx, feedCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- feed.Run(feedCtx) }()

	// Poll until the consumer group rebalances and all three messages have
	// been applied.
	deadline := time.Now().Add(90 * time.Second)
	var byID map[string]float64
	for {
		points, err := feed.Current(ctx)
		require.NoError(t, err)

		byID = map[string]float64{}
		for _, p := range points {
			byID[p.ID] = p.RecentSnowfall
		}
		if byID["loon"] == 7.5 && byID["cannon"] == 5.0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("feed did not converge, latest: %v", byID)
		}
		time.Sleep(250 * time.Millisecond)
	}

	assert.Len(t, byID, 2, "one point per resort")
	assert.Equal(t, 7.5, byID["loon"], "later snapshot should win")

	feedCancel()
	require.NoError(t, <-errCh)
}

// TestSyntheticRenderFromFeed renders a tile using observation points that
// arrived over Kafka, end to end.
func TestSyntheticRenderFromFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testConditionsTopic)

	publishSnapshots(ctx, t, broker, []snapshot{
		{ResortID: "loon", ResortName: "Loon Mountain", Lat: 44.0364, Lon: -71.6214, RecentSnowfall: 6.0, SnowDepth: 40},
	})

	cfg := &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaConditionsTopic: testConditionsTopic,
		KafkaGroupID:         fmt.Sprintf("test-render-%d", time.Now().UnixNano()),
	}

	feed := kafka.NewFeed(cfg, discardLogger())
	t.Cleanup(func() { _ = feed.Close() })

	feedCtx, feedCancel := context.WithCancel(ctx)
	defer feedCancel()
	go func() { _ = feed.Run(feedCtx) }()

	deadline := time.Now().Add(90 * time.Second)
	for {
		points, err := feed.Current(ctx)
		require.NoError(t, err)
		if len(points) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("feed never received the snapshot")
		}
		time.Sleep(250 * time.Millisecond)
	}

	metrics := observability.NewMetricsForTesting()
	renderer := synth.NewRenderer(discardLogger(), metrics)
	syntheticSource := source.NewSynthetic(feed, renderer, discardLogger(), metrics)

	// Zoom 8 tile over central New Hampshire.
	data, err := syntheticSource.RenderAt(ctx, 0, 8, 77, 93)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}
