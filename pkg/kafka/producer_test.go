package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerValidates(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("brotli"))
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithRequiredAcks(2))
	assert.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("zstd"))
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	require.NoError(t, p.Close())
}

func TestOptionsIgnoreNonPositive(t *testing.T) {
	cfg := defaultProducerConfig()
	WithBatchSize(0)(cfg)
	WithMaxAttempts(-1)(cfg)
	WithTimeouts(0, 0)(cfg)
	assert.Equal(t, defaultProducerConfig(), cfg)
}

func TestPublishEncodesValues(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, "gzip")

	require.NoError(t, p.Publish(context.Background(), "t", []byte("k1"), map[string]int{"n": 1}))
	require.NoError(t, p.Publish(context.Background(), "t", nil, "raw"))
	require.Len(t, w.msgs, 2)
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "k1", string(w.msgs[0].Key))
	assert.Equal(t, "raw", string(w.msgs[1].Value))

	assert.Error(t, p.Publish(context.Background(), "t", nil, func() {}))

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), "t", nil, "x"))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
