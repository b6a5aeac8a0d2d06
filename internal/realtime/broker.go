package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Broker 变更事件的投递方式
//   - ChannelBroker：单实例，直接分发到本地 Hub
//   - KafkaBroker：写入 Kafka，每个实例用独立消费组读回全部事件
type Broker interface {
	// Publish 投递事件；本实例的订阅者总能立即收到
	Publish(ctx context.Context, ev ChangeEvent) error
	// Start 启动消费循环，阻塞到 ctx 取消
	Start(ctx context.Context)
	// Close 释放资源
	Close() error
}

// NewBroker 按 messageMode 创建 Broker
func NewBroker(cfg config.KafkaConfig, hub *Hub) Broker {
	if cfg.MessageMode == "kafka" {
		return NewKafkaBroker(cfg, hub)
	}
	return NewChannelBroker(hub)
}

// ChannelBroker 单实例模式
type ChannelBroker struct {
	hub *Hub
}

func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{hub: hub}
}

func (b *ChannelBroker) Publish(_ context.Context, ev ChangeEvent) error {
	metrics.ObserveChangeEvent(ev.Table, string(ev.Op))
	b.hub.Dispatch(ev)
	return nil
}

func (b *ChannelBroker) Start(ctx context.Context) {
	<-ctx.Done()
}

func (b *ChannelBroker) Close() error { return nil }

// KafkaBroker 多实例模式
type KafkaBroker struct {
	hub      *Hub
	origin   string
	producer *kafka.Writer
	consumer *kafka.Reader
}

// NewKafkaBroker 消费组名为 groupPrefix + 实例 ID，保证每个实例都能收到全部事件
func NewKafkaBroker(cfg config.KafkaConfig, hub *Hub) *KafkaBroker {
	origin := uuid.NewString()
	timeout := cfg.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	return &KafkaBroker{
		hub:    hub,
		origin: origin,
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.HostPort),
			Topic:                  cfg.ChangeTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{cfg.HostPort},
			Topic:          cfg.ChangeTopic,
			GroupID:        cfg.GroupPrefix + "_" + origin,
			CommitInterval: timeout,
			StartOffset:    kafka.LastOffset,
		}),
	}
}

// Publish 先分发给本地订阅者，再写入 Kafka 通知其他实例
func (b *KafkaBroker) Publish(ctx context.Context, ev ChangeEvent) error {
	ev.Origin = b.origin
	metrics.ObserveChangeEvent(ev.Table, string(ev.Op))
	b.hub.Dispatch(ev)

	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Table),
		Value: value,
	})
}

// Start 读取其他实例的事件分发到本地 Hub
func (b *KafkaBroker) Start(ctx context.Context) {
	for {
		msg, err := b.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("read change event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		ev, ok := b.decode(msg.Value)
		if !ok || ev.Origin == b.origin {
			continue
		}
		b.hub.Dispatch(ev)
	}
}

func (b *KafkaBroker) decode(value []byte) (ChangeEvent, bool) {
	var ev ChangeEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		zap.L().Warn("bad change event", zap.Error(err), zap.ByteString("value", value))
		return ev, false
	}
	return ev, true
}

func (b *KafkaBroker) Close() error {
	return errors.Join(b.producer.Close(), b.consumer.Close())
}

// Emit 生成并投递一条变更事件，投递失败只记录日志
func Emit(ctx context.Context, b Broker, table string, op Op, columns map[string]string) {
	if b == nil {
		return
	}
	ev := NewEvent(table, op, columns)
	if err := b.Publish(ctx, ev); err != nil {
		zap.L().Warn("publish change event failed",
			zap.String("table", table),
			zap.String("op", string(op)),
			zap.Error(err),
		)
	}
}
