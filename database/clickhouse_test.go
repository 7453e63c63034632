package database

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"ewm/api/config"
)

type unreachableConn struct {
	clickhouse.Conn
	closed bool
}

func (c *unreachableConn) Ping(context.Context) error { return errors.New("connection refused") }

func (c *unreachableConn) Close() error {
	c.closed = true
	return nil
}

func TestNewClickHouseDBClosesOnPingFailure(t *testing.T) {
	conn := &unreachableConn{}
	orig := openClickHouse
	openClickHouse = func(*clickhouse.Options) (clickhouse.Conn, error) { return conn, nil }
	t.Cleanup(func() { openClickHouse = orig })

	cfg := config.ClickHouse{Host: "127.0.0.1", NativePort: 9000, Database: "stats"}
	client, err := NewClickHouseDB(context.Background(), cfg, zap.NewNop())
	if err == nil {
		t.Fatalf("NewClickHouseDB() = %+v, want error", client)
	}
	if !conn.closed {
		t.Error("connection left open after failed ping")
	}
}

func TestNewClickHouseDBRequiresConfig(t *testing.T) {
	if _, err := NewClickHouseDB(context.Background(), config.ClickHouse{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty config")
	}
}
