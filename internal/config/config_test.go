package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "crm", cfg.Mongo.Database)
	assert.Equal(t, []string{"127.0.0.1:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.PublishEnabled)
	assert.Equal(t, "/vender/send", cfg.Vendor.SendPath)
	assert.Equal(t, 0.9, cfg.Vendor.SuccessRate)
	assert.Equal(t, time.Second, cfg.Vendor.Delay)
	assert.Equal(t, 3, cfg.Vendor.Breaker.FailThreshold)
	assert.Equal(t, "ai", cfg.Campaign.Personalization)
	assert.Equal(t, 1, cfg.Campaign.WorkerCount)
	assert.Equal(t, 50, cfg.RateLimit.RPS)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}
