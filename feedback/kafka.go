package feedback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pkg/metrics"
)

// producer 是 *kgo.Client 中用到的方法。
type producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaConfig Kafka 采集器配置
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string

	// BatchSize 缓冲达到该数量时立即投递，默认 100
	BatchSize int

	// FlushInterval 定时投递间隔，默认 1s
	FlushInterval time.Duration

	// Compression 压缩类型：gzip/snappy/lz4/zstd，空为不压缩
	Compression string

	// MaxBuffered 采集器与客户端各自最多缓冲的事件数，超出的事件直接丢弃，默认 10000
	MaxBuffered int

	// DeliveryTimeout 单条事件的最长投递时间，超时视为失败，默认 30s
	DeliveryTimeout time.Duration

	// CloseTimeout Close 等待剩余事件发送的最长时间，默认 10s
	CloseTimeout time.Duration
}

func (cfg *KafkaConfig) applyDefaults() {
	if cfg.ClientID == "" {
		cfg.ClientID = "feedrec-feedback"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.MaxBuffered <= 0 {
		cfg.MaxBuffered = 10000
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 30 * time.Second
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
}

// KafkaCollector 缓冲事件并批量投递到 Kafka，同一用户的事件使用 UserID 作为 key 保证有序。
//
// 投递不阻塞调用方：采集器缓冲已满或客户端缓冲已满时事件被丢弃并计数，
// Broker 不可用时 Close 最多等待 CloseTimeout。
type KafkaCollector struct {
	client        producer
	topic         string
	batchSize     int
	maxBuffered   int
	flushInterval time.Duration
	closeTimeout  time.Duration
	log           zerolog.Logger

	// ctx 在 Close 超时后取消，未发送的事件随之失败
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	buffer    []Event
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
	stopCh    chan struct{}
	flushCh   chan struct{}

	dropped atomic.Int64
}

// NewKafkaCollector 创建 Kafka 采集器。
func NewKafkaCollector(cfg KafkaConfig, log zerolog.Logger) (*KafkaCollector, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, core.NewDomainError(core.ModuleFeedback, core.ErrorCodeInvalidInput, "feedback: kafka brokers and topic are required")
	}
	cfg.applyDefaults()

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.LeaderAck()),
		kgo.DisableIdempotentWrite(),
		kgo.MaxBufferedRecords(cfg.MaxBuffered),
		kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout),
	}
	switch cfg.Compression {
	case "gzip":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case "snappy":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case "lz4":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case "zstd":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeedback, core.ErrorCodeUnavailable, "feedback: kafka client: "+err.Error())
	}
	return newKafkaCollector(client, cfg, log), nil
}

func newKafkaCollector(client producer, cfg KafkaConfig, log zerolog.Logger) *KafkaCollector {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	c := &KafkaCollector{
		client:        client,
		topic:         cfg.Topic,
		batchSize:     cfg.BatchSize,
		maxBuffered:   cfg.MaxBuffered,
		flushInterval: cfg.FlushInterval,
		closeTimeout:  cfg.CloseTimeout,
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
		buffer:        make([]Event, 0, cfg.BatchSize),
		stopCh:        make(chan struct{}),
		flushCh:       make(chan struct{}, 1),
	}
	c.wg.Add(1)
	go c.flushLoop()
	return c
}

func (c *KafkaCollector) RecordImpressions(_ context.Context, userID string, items []*core.ScoredCandidate) error {
	c.enqueue(impressionEvents(userID, items, time.Now())...)
	return nil
}

func (c *KafkaCollector) RecordInteraction(_ context.Context, in core.Interaction) error {
	c.enqueue(interactionEvent(in))
	return nil
}

// Dropped 返回至今丢弃的事件数。
func (c *KafkaCollector) Dropped() int64 {
	return c.dropped.Load()
}

func (c *KafkaCollector) drop(reason string, n int) {
	if n <= 0 {
		return
	}
	c.dropped.Add(int64(n))
	metrics.RecordFeedbackDropped(reason, n)
}

// enqueue 非阻塞写入缓冲，达到批量大小时通知后台协程投递。
func (c *KafkaCollector) enqueue(events ...Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.drop("closed", len(events))
		return
	}
	room := c.maxBuffered - len(c.buffer)
	overflow := 0
	if len(events) > room {
		overflow = len(events) - max(room, 0)
		events = events[:max(room, 0)]
	}
	c.buffer = append(c.buffer, events...)
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if overflow > 0 {
		c.drop("buffer_full", overflow)
		c.log.Warn().Int("dropped", overflow).Msg("feedback buffer full, events dropped")
	}
	if full {
		select {
		case c.flushCh <- struct{}{}:
		default:
		}
	}
}

func (c *KafkaCollector) flushLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.flushCh:
			c.flush()
		case <-c.stopCh:
			return
		}
	}
}

// flush 取出缓冲并交给客户端异步投递，客户端缓冲已满时立即失败而不是阻塞。
func (c *KafkaCollector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	events := c.buffer
	c.buffer = make([]Event, 0, c.batchSize)
	c.mu.Unlock()

	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			c.log.Warn().Err(err).Str("event_id", ev.ID).Msg("marshal feedback event failed")
			continue
		}
		record := &kgo.Record{
			Topic: c.topic,
			Key:   []byte(ev.UserID),
			Value: data,
		}
		c.client.TryProduce(c.ctx, record, c.onDelivered)
	}
}

func (c *KafkaCollector) onDelivered(r *kgo.Record, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, kgo.ErrMaxBuffered) {
		c.drop("producer_full", 1)
		return
	}
	c.log.Warn().Err(err).Str("topic", r.Topic).Msg("produce feedback event failed")
}

// Close 停止后台协程，投递剩余事件并最多等待 CloseTimeout。
func (c *KafkaCollector) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()

		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		// closed 之前写入的事件仍在缓冲中
		c.flush()

		ctx, cancel := context.WithTimeout(context.Background(), c.closeTimeout)
		defer cancel()
		if err = c.client.Flush(ctx); err != nil {
			c.log.Warn().Err(err).Int64("dropped", c.Dropped()).Msg("feedback flush incomplete on close")
		}
		c.cancel()
		c.client.Close()
	})
	return err
}
