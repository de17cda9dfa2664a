package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/narcan-map/internal/config"
	"github.com/couchcryptid/narcan-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes case markers to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured marker topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// markerMessage is the JSON value written for each case marker.
type markerMessage struct {
	domain.CaseMarker
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at"`
	Source     string    `json:"source"`
}

// Publish writes every marker of the state in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, state *domain.MapState) error {
	if state == nil || len(state.Data.Markers) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(state.Data.Markers))
	for i := range state.Data.Markers {
		msg, err := serializeToMessage(state, i)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write markers: %w", err)
	}
	w.logger.Debug("markers published", "generation", state.Generation, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals the i-th marker of state into a Kafka message.
func serializeToMessage(state *domain.MapState, i int) (kafkago.Message, error) {
	m := state.Data.Markers[i]
	data, err := json.Marshal(markerMessage{
		CaseMarker: m,
		Generation: state.Generation,
		LoadedAt:   state.LoadedAt,
		Source:     state.Source,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize case marker: %w", err)
	}
	gen := strconv.FormatUint(state.Generation, 10)
	return kafkago.Message{
		Key:   []byte(gen + "-" + strconv.Itoa(i)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generation", Value: []byte(gen)},
			{Key: "loaded_at", Value: []byte(state.LoadedAt.Format(time.RFC3339))},
			{Key: "fentanyl", Value: []byte(strconv.FormatBool(m.Fentanyl))},
		},
	}, nil
}
