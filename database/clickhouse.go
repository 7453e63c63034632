package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"ewm/api/config"
)

// openClickHouse is replaced in tests.
var openClickHouse = clickhouse.Open

type ClickHouseClient struct {
	Conn clickhouse.Conn
	log  *zap.Logger
}

func NewClickHouseDB(ctx context.Context, cfg config.ClickHouse, log *zap.Logger) (*ClickHouseClient, error) {
	if cfg.Host == "" || cfg.NativePort == 0 || cfg.Database == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST, CLICKHOUSE_NATIVE_PORT, or CLICKHOUSE_DB_NAME is not set")
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.NativePort)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "ewm-stat-service", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := openClickHouse(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("connected to ClickHouse", zap.String("addr", options.Addr[0]), zap.String("db", cfg.Database))
	return &ClickHouseClient{Conn: conn, log: log}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.Close(); err != nil {
		c.log.Error("error closing ClickHouse connection", zap.Error(err))
		return
	}
	c.log.Info("ClickHouse connection closed")
}
