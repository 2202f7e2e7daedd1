package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
	ValkeyPoolSize       = 10
)

// Vector Gateway接続設定
const (
	VectorRequestTimeout = 5 * time.Second
)

// Circuit Breaker設定
const (
	CBName             = "vector-gateway"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// IPAコネクション設定
const (
	ReadBufferSize = 4096
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
