package broadcaster

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"kestrel/infra/journal"
)

// Broadcaster drains the trade journal to Kafka with at-least-once
// delivery. Entries move NEW -> SENT -> ACKED; a failed produce marks
// the entry FAILED and it is retried on a later pass.
type Broadcaster struct {
	log      *logrus.Entry
	journal  *journal.Journal
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	batch    int
}

// Event is the wire shape published for every executed trade.
type Event struct {
	V     int    `json:"v"`
	Type  string `json:"type"`
	Seq   uint64 `json:"seq"`
	Maker uint64 `json:"maker"`
	Taker uint64 `json:"taker"`
	Price int64  `json:"price"`
	Qty   int64  `json:"qty"`
	At    int64  `json:"at"`
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	log *logrus.Logger,
	j *journal.Journal,
	brokers []string,
	topic string,
	interval time.Duration,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		log:      log.WithField("component", "broadcaster"),
		journal:  j,
		producer: producer,
		topic:    topic,
		interval: interval,
		batch:    256,
	}, nil
}

// ------------------------------------------------
// START LOOP
// ------------------------------------------------

func (b *Broadcaster) Start(ctx context.Context) {
	b.log.Info("started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				b.log.Info("stopped")
				return
			case <-ticker.C:
				b.flush()
			}
		}
	}()
}

func (b *Broadcaster) flush() {
	pending, err := b.journal.Pending(b.batch)
	if err != nil {
		b.log.WithError(err).Error("journal scan failed")
		return
	}

	for _, e := range pending {
		if err := b.send(e); err != nil {
			b.log.WithError(err).WithField("seq", e.Trade.Seq).Warn("publish failed")
			_ = b.journal.MarkFailed(e.Trade.Seq)
			continue
		}
		_ = b.journal.MarkAcked(e.Trade.Seq)
	}
}

func (b *Broadcaster) send(e journal.Entry) error {
	if err := b.journal.MarkSent(e.Trade.Seq); err != nil {
		return err
	}

	payload, err := json.Marshal(Event{
		V:     1,
		Type:  "trade",
		Seq:   e.Trade.Seq,
		Maker: e.Trade.MakerID,
		Taker: e.Trade.TakerID,
		Price: e.Trade.Price,
		Qty:   e.Trade.Qty,
		At:    e.Trade.At,
	})
	if err != nil {
		return err
	}

	_, _, err = b.producer.SendMessage(&sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(e.Trade.Seq, 10)),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
