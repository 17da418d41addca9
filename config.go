package main

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr              string
	TLSCert           string
	TLSKey            string
	MaxRooms          int
	MaxClientsPerRoom int
	MaxMessageSize    int64
	RoomIdleTimeout   time.Duration
	RateLimitPerIP    float64
}

func LoadConfig() *Config {
	return &Config{
		Addr:              envStr("STUDYROOM_ADDR", ":3001"),
		TLSCert:           envStr("STUDYROOM_TLS_CERT", ""),
		TLSKey:            envStr("STUDYROOM_TLS_KEY", ""),
		MaxRooms:          envInt("STUDYROOM_MAX_ROOMS", 1000),
		MaxClientsPerRoom: envInt("STUDYROOM_MAX_CLIENTS_PER_ROOM", 16),
		MaxMessageSize:    int64(envInt("STUDYROOM_MAX_MESSAGE_SIZE", 4194304)),
		RoomIdleTimeout:   time.Duration(envInt("STUDYROOM_ROOM_IDLE_TIMEOUT", 3600)) * time.Second,
		RateLimitPerIP:    float64(envInt("STUDYROOM_RATE_LIMIT_PER_IP", 100)),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
