package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.WebSocket.PingInterval != 30*time.Second {
		t.Errorf("WebSocket.PingInterval = %v, want 30s", cfg.WebSocket.PingInterval)
	}
	if cfg.WebSocket.PongWait != 60*time.Second {
		t.Errorf("WebSocket.PongWait = %v, want 60s", cfg.WebSocket.PongWait)
	}
	if cfg.WebSocket.MaxMessageSize != 65536 {
		t.Errorf("WebSocket.MaxMessageSize = %d, want 65536", cfg.WebSocket.MaxMessageSize)
	}
	if cfg.Redis.RegistryPrefix != "collab:registry" {
		t.Errorf("Redis.RegistryPrefix = %q, want %q", cfg.Redis.RegistryPrefix, "collab:registry")
	}
	if cfg.Kafka.Topic != "presence-events" {
		t.Errorf("Kafka.Topic = %q, want %q", cfg.Kafka.Topic, "presence-events")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PORT", "9313")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ROOMS_BASE_URL", "http://rooms:8082")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != 9313 {
		t.Errorf("Server.Port = %d, want 9313", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "env-secret")
	}
	if cfg.Rooms.BaseURL != "http://rooms:8082" {
		t.Errorf("Rooms.BaseURL = %q, want %q", cfg.Rooms.BaseURL, "http://rooms:8082")
	}
	if cfg.Kafka.Brokers != "kafka-1:9092,kafka-2:9092" {
		t.Errorf("Kafka.Brokers = %q, want %q", cfg.Kafka.Brokers, "kafka-1:9092,kafka-2:9092")
	}
}
