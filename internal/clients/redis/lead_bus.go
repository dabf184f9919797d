package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/types"
)

// LeadBus fans lead create/update events out to dashboard realtime feeds.
type LeadBus interface {
	Publish(ctx context.Context, event types.LeadEvent) error
	StartForwarder(ctx context.Context, onEvent func(e types.LeadEvent)) error
	Close() error
}

type leadBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewLeadBus(log *logger.Logger) (LeadBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_LEAD_CHANNEL"))
	if ch == "" {
		ch = "lead_events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &leadBus{
		log:     log.With("service", "RedisLeadBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *leadBus) Publish(ctx context.Context, event types.LeadEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis lead bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *leadBus) StartForwarder(ctx context.Context, onEvent func(e types.LeadEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis lead bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var event types.LeadEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.log.Warn("bad redis lead event payload", "error", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (b *leadBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
