package vector

import (
	"errors"
	"fmt"
)

// 加入者解決エラー
var (
	// ErrSubscriberNotFound は加入者が未登録の場合のエラー。
	// プロトコル層ではIMSI Unknownのエラー原因コードに対応付けられる。
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// ErrServiceNotActive は加入者のGSMサービスが有効でない場合のエラー
	ErrServiceNotActive = errors.New("gsm service not active")

	// ErrUnknownAuthAlgo はサポートされていない認証アルゴリズムの場合のエラー
	ErrUnknownAuthAlgo = errors.New("unknown auth algorithm")

	// ErrAuthTupleMissing は事前計算済み認証タプルが登録されていない場合のエラー
	ErrAuthTupleMissing = errors.New("auth tuple not present")
)

// Vector Gatewayエラー
var (
	// ErrCircuitOpen はCircuit BreakerがOpen状態の場合のエラー
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrInvalidResponse はVector Gatewayからのレスポンスが不正な場合のエラー
	ErrInvalidResponse = errors.New("invalid response from vector gateway")
)

// APIError はVector GatewayのHTTP APIエラーを表す
type APIError struct {
	StatusCode int
	Message    string
	Details    *ProblemDetails
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("vector api error: %d %s - %s", e.StatusCode, e.Details.Title, e.Details.Detail)
	}
	return fmt.Sprintf("vector api error: %d %s", e.StatusCode, e.Message)
}

// IsServerError はサーバーエラーかどうかを判定する
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// ConnectionError はVector Gatewayへの接続エラーを表す
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
