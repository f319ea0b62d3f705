// Package kafka consumes resort condition snapshots from a Kafka topic.
//
// A collector service publishes one JSON snapshot per resort, keyed by
// resort ID, whenever conditions change. The feed keeps the latest
// snapshot per resort in memory and serves it as observation points for
// radar synthesis, so a rendering node never queries the conditions API
// directly when a broker is available.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/powder-radar-service/internal/config"
	"github.com/couchcryptid/powder-radar-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// conditionsMessage is the wire format published by the conditions
// collector: one resort per message.
type conditionsMessage struct {
	ResortID       string  `json:"resortId"`
	ResortName     string  `json:"resortName"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	RecentSnowfall float64 `json:"recentSnowfall"`
	SnowDepth      float64 `json:"snowDepth"`
	BaseTemp       float64 `json:"baseTemp"`
	WindSpeed      float64 `json:"windSpeed"`
	Visibility     float64 `json:"visibility"`
}

// Feed consumes resort condition snapshots and keeps the latest per
// resort. It implements conditions.Provider.
type Feed struct {
	reader *kafkago.Reader
	logger *slog.Logger

	mu     sync.RWMutex
	latest map[string]domain.ObservationPoint
}

// NewFeed creates a consumer for the configured conditions topic.
func NewFeed(cfg *config.Config, logger *slog.Logger) *Feed {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaConditionsTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
	})
	return &Feed{
		reader: r,
		logger: logger,
		latest: make(map[string]domain.ObservationPoint),
	}
}

// Run consumes messages until the context is cancelled or the reader is
// closed. Malformed messages are logged and skipped.
func (f *Feed) Run(ctx context.Context) error {
	for {
		msg, err := f.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read conditions message: %w", err)
		}

		point, err := mapMessageToPoint(msg)
		if err != nil {
			f.logger.Warn("skipping malformed conditions message",
				"error", err,
				"key", string(msg.Key),
				"offset", msg.Offset)
			continue
		}

		f.mu.Lock()
		f.latest[point.ID] = point
		f.mu.Unlock()

		f.logger.Debug("conditions snapshot applied",
			"resort", point.ID,
			"snowfall", point.RecentSnowfall)
	}
}

// Current returns the latest known observation point for every resort.
func (f *Feed) Current(ctx context.Context) ([]domain.ObservationPoint, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	points := make([]domain.ObservationPoint, 0, len(f.latest))
	for _, p := range f.latest {
		points = append(points, p)
	}
	return points, nil
}

func (f *Feed) Close() error {
	return f.reader.Close()
}

// mapMessageToPoint deserializes a conditions snapshot into an
// observation point. Resorts without coordinates are rejected because
// they cannot anchor interpolation.
func mapMessageToPoint(msg kafkago.Message) (domain.ObservationPoint, error) {
	var cm conditionsMessage
	if err := json.Unmarshal(msg.Value, &cm); err != nil {
		return domain.ObservationPoint{}, fmt.Errorf("unmarshal conditions snapshot: %w", err)
	}
	if cm.ResortID == "" {
		cm.ResortID = string(msg.Key)
	}
	if cm.ResortID == "" {
		return domain.ObservationPoint{}, fmt.Errorf("conditions snapshot missing resort id")
	}
	if cm.Lat == 0 && cm.Lon == 0 {
		return domain.ObservationPoint{}, fmt.Errorf("resort %s has no coordinates", cm.ResortID)
	}
	return domain.ObservationPoint{
		ID:             cm.ResortID,
		Name:           cm.ResortName,
		Lat:            cm.Lat,
		Lon:            cm.Lon,
		RecentSnowfall: cm.RecentSnowfall,
		SnowDepth:      cm.SnowDepth,
		BaseTemp:       cm.BaseTemp,
		WindSpeed:      cm.WindSpeed,
		Visibility:     cm.Visibility,
	}, nil
}
