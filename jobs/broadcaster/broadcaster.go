// Package broadcaster publishes trade reports to Kafka. The engine's
// trade callback feeds a bounded channel; a drain goroutine encodes each
// trade and sends it through a synchronous producer. When the channel is
// full the trade is dropped and counted — the matching hot path is never
// blocked by the broker.
package broadcaster

import (
	"sync"
	"sync/atomic"

	"github.com/IBM/sarama"

	"vega/domain/market"
	"vega/infra/codec"
)

// Config selects the broker endpoints and topic.
type Config struct {
	Brokers []string
	Topic   string
	Key     string // message key, typically the run ID
	Buffer  int    // pending-trade channel depth
}

// Broadcaster drains trades to Kafka in the background.
type Broadcaster struct {
	producer sarama.SyncProducer
	topic    string
	key      sarama.Encoder

	ch   chan market.Trade
	wg   sync.WaitGroup
	once sync.Once

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// New connects the producer and starts the drain goroutine.
func New(cfg Config) (*Broadcaster, error) {
	scfg := sarama.NewConfig()
	scfg.Producer.Return.Successes = true
	scfg.Producer.RequiredAcks = sarama.WaitForAll
	scfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.Brokers, scfg)
	if err != nil {
		return nil, err
	}

	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 1024
	}
	b := &Broadcaster{
		producer: producer,
		topic:    cfg.Topic,
		key:      sarama.StringEncoder(cfg.Key),
		ch:       make(chan market.Trade, buffer),
	}
	b.wg.Add(1)
	go b.drain()
	return b, nil
}

// Publish enqueues a trade for broadcast. Never blocks; drops and counts
// when the buffer is full.
func (b *Broadcaster) Publish(t market.Trade) {
	select {
	case b.ch <- t:
	default:
		b.dropped.Add(1)
	}
}

// Published returns the number of trades acked by the broker.
func (b *Broadcaster) Published() uint64 { return b.published.Load() }

// Dropped returns the number of trades dropped on a full buffer.
func (b *Broadcaster) Dropped() uint64 { return b.dropped.Load() }

// Failed returns the number of sends the broker refused.
func (b *Broadcaster) Failed() uint64 { return b.failed.Load() }

// Close flushes pending trades and closes the producer.
func (b *Broadcaster) Close() error {
	b.once.Do(func() { close(b.ch) })
	b.wg.Wait()
	return b.producer.Close()
}

func (b *Broadcaster) drain() {
	defer b.wg.Done()
	for t := range b.ch {
		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   b.key,
			Value: sarama.ByteEncoder(codec.EncodeTrade(t)),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.failed.Add(1)
			continue
		}
		b.published.Add(1)
	}
}
