package repository

import (
	"context"

	"MarketBluff/internal/domain/models"
	"MarketBluff/internal/domain/repository"
	pkgkafka "MarketBluff/pkg/kafka"
)

// KafkaSummaryPublisher implements SummaryPublisher for Kafka. Messages are
// keyed by the run timestamp and carry the same JSON shape the API returns.
type KafkaSummaryPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSummaryPublisher creates Kafka publisher.
func NewKafkaSummaryPublisher(producer *pkgkafka.Producer, topic string) repository.SummaryPublisher {
	return &KafkaSummaryPublisher{producer: producer, topic: topic}
}

func (p *KafkaSummaryPublisher) PublishSummary(ctx context.Context, s *models.AnalysisSummary) error {
	key := []byte(s.GeneratedAt.UTC().Format("20060102T150405.000000000Z"))
	return p.producer.Publish(ctx, p.topic, key, models.NewAnalyzeResponse(s))
}

func (p *KafkaSummaryPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopSummaryPublisher drops summaries; used when Kafka is disabled.
type NoopSummaryPublisher struct{}

func (NoopSummaryPublisher) PublishSummary(context.Context, *models.AnalysisSummary) error {
	return nil
}

func (NoopSummaryPublisher) Close() error { return nil }
