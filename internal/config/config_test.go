package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("COD_MAX_CENTS", "")
	t.Setenv("RETURN_WINDOW", "")

	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(100000), cfg.CODMaxCents)
	assert.Equal(t, 7*24*time.Hour, cfg.ReturnWindow)
	assert.Empty(t, cfg.AMQPURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("MAX_QTY_PER_ITEM", "10")
	t.Setenv("REFUNDS_WORKERS", "not-a-number")
	t.Setenv("REPORT_CACHE_TTL", "30s")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.MaxQtyPerItem)
	assert.Equal(t, 4, cfg.RefundsWorkers)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
}
