package vector

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/config"
	"github.com/sony/gobreaker"
)

// Client はVector GatewayからGSMトリプレットを取得するProvider実装
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
}

// NewClient は新しいVector Gatewayクライアントを生成する
func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetTimeout(config.VectorRequestTimeout)

	cbSettings := gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	return &Client{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(cfg.VectorAPIURL, "/"),
	}
}

// GetAuthVector はVector Gatewayに問い合わせて認証ベクターを取得する。
// 404はErrSubscriberNotFoundに、それ以外の失敗は接続/APIエラーに対応付ける。
func (c *Client) GetAuthVector(ctx context.Context, imsi string) (AuthVector, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		req := c.httpClient.R().
			SetContext(ctx).
			SetHeader(HeaderContentType, ContentTypeJSON).
			SetBody(map[string]string{"imsi": imsi})

		if traceID := TraceIDFrom(ctx); traceID != "" {
			req.SetHeader(HeaderTraceID, traceID)
		}

		resp, err := req.Post(c.baseURL + "/api/v1/vector")
		if err != nil {
			return nil, &ConnectionError{Cause: err}
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		// CB失敗判定対象: 5xx
		if statusCode >= 500 {
			apiErr := c.parseAPIError(statusCode, resp.Body())
			slog.Error("vector api error",
				"event_id", "VECTOR_API_ERR",
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			return nil, apiErr
		}

		// 4xxはCB失敗判定対象外: nilエラーで返してCBカウントに含めない
		if statusCode != 200 {
			apiErr := c.parseAPIError(statusCode, resp.Body())
			slog.Warn("vector api error",
				"event_id", "VECTOR_API_ERR",
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			return apiErr, nil
		}

		slog.Debug("vector api success",
			"latency_ms", latencyMs,
		)

		return resp.Body(), nil
	})

	if err != nil {
		// Circuit BreakerがOpen状態
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return AuthVector{}, ErrCircuitOpen
		}
		return AuthVector{}, err
	}

	// CB対象外のAPIエラー
	if apiErr, ok := result.(*APIError); ok {
		if apiErr.StatusCode == 404 {
			return AuthVector{}, ErrSubscriberNotFound
		}
		return AuthVector{}, apiErr
	}

	body, ok := result.([]byte)
	if !ok {
		return AuthVector{}, ErrInvalidResponse
	}

	return c.parseResponse(body)
}

// parseResponse はJSONレスポンスをAuthVectorに変換する
func (c *Client) parseResponse(body []byte) (AuthVector, error) {
	var raw vectorResponseJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return AuthVector{}, fmt.Errorf("%w: json unmarshal: %v", ErrInvalidResponse, err)
	}

	randBytes, err := hex.DecodeString(raw.RAND)
	if err != nil {
		return AuthVector{}, fmt.Errorf("%w: rand hex decode: %v", ErrInvalidResponse, err)
	}
	sresBytes, err := hex.DecodeString(raw.SRES)
	if err != nil {
		return AuthVector{}, fmt.Errorf("%w: sres hex decode: %v", ErrInvalidResponse, err)
	}
	kcBytes, err := hex.DecodeString(raw.KC)
	if err != nil {
		return AuthVector{}, fmt.Errorf("%w: kc hex decode: %v", ErrInvalidResponse, err)
	}

	if len(randBytes) != RandLen || len(sresBytes) != SresLen || len(kcBytes) != KcLen {
		return AuthVector{}, fmt.Errorf("%w: bad tuple lengths: rand=%d sres=%d kc=%d",
			ErrInvalidResponse, len(randBytes), len(sresBytes), len(kcBytes))
	}

	return AuthVector{
		Rand: randBytes,
		Sres: sresBytes,
		Kc:   kcBytes,
	}, nil
}

// parseAPIError はHTTPエラーレスポンスをAPIErrorに変換する
func (c *Client) parseAPIError(statusCode int, body []byte) *APIError {
	var details ProblemDetails
	if err := json.Unmarshal(body, &details); err == nil && details.Title != "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    details.Title,
			Details:    &details,
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}
}

// traceIDKey はコンテキストからTrace IDを取得するためのキー型
type traceIDKey struct{}

// WithTraceID はコンテキストにTrace IDを設定する
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFrom はコンテキストからTrace IDを取り出す。未設定なら空文字列。
func TraceIDFrom(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}
