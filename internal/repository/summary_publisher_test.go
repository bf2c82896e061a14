package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBluff/internal/domain/models"
	pkgkafka "MarketBluff/pkg/kafka"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSummaryPublisher(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaSummaryPublisher(pkgkafka.NewProducerWithWriter(w, "gzip"), "marketbluff.summaries")

	summary := &models.AnalysisSummary{
		GeneratedAt:        time.Date(2026, 3, 31, 14, 0, 0, 0, time.UTC),
		Params:             models.AnalysisParams{Tickers: []string{"AAPL"}, LookbackMonths: 6, DeclineThresholdPct: 20},
		UniverseSize:       1,
		DeclinedStockCount: 0,
	}
	require.NoError(t, pub.PublishSummary(context.Background(), summary))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "marketbluff.summaries", w.msgs[0].Topic)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	assert.Equal(t, float64(1), body["universe_size"])
	assert.Equal(t, []interface{}{}, body["declined_stocks"])

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}
