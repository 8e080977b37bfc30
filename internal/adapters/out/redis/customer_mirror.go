// Package redis keeps the per-customer order mirror in Redis hashes: one
// hash per customer, one field per order id, the JSON document as value.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"buyback/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ ports.CustomerMirror = &CustomerMirror{}

const keyPrefix = "customer_orders:"

type CustomerMirror struct {
	rdb    goredis.UniversalClient
	logger *zap.Logger
}

// NewCustomerMirror connects to addr and pings it once.
func NewCustomerMirror(ctx context.Context, addr string, logger *zap.Logger) (*CustomerMirror, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewCustomerMirrorWithClient(rdb, logger), nil
}

func NewCustomerMirrorWithClient(rdb goredis.UniversalClient, logger *zap.Logger) *CustomerMirror {
	return &CustomerMirror{
		rdb:    rdb,
		logger: logger.With(zap.String("component", "redis_customer_mirror")),
	}
}

func (m *CustomerMirror) Put(ctx context.Context, customerID string, orderID int64, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode order %d: %w", orderID, err)
	}
	return m.rdb.HSet(ctx, key(customerID), strconv.FormatInt(orderID, 10), raw).Err()
}

// List returns every mirrored order of the customer. Fields that do not
// decode are skipped and logged.
func (m *CustomerMirror) List(ctx context.Context, customerID string) (map[int64]map[string]any, error) {
	fields, err := m.rdb.HGetAll(ctx, key(customerID)).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[int64]map[string]any, len(fields))
	for field, raw := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			m.logger.Warn("skipping mirror field with non-numeric order id",
				zap.String("customer_id", customerID), zap.String("field", field))
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			m.logger.Warn("skipping undecodable mirror document",
				zap.String("customer_id", customerID), zap.Int64("order_id", id), zap.Error(err))
			continue
		}
		out[id] = doc
	}
	return out, nil
}

func (m *CustomerMirror) Close() error {
	return m.rdb.Close()
}

func key(customerID string) string {
	return keyPrefix + customerID
}
