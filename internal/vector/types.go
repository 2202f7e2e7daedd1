// Package vector は加入者の認証ベクター解決を提供する。
// バックエンドは2種類: 加入者ストアの事前計算済みタプルを引くProcessorと、
// Vector GatewayにHTTPで問い合わせるClient。
package vector

// AuthVector はGSMチャレンジ/レスポンス認証に使うトリプレット (RAND, SRES, Kc)
type AuthVector struct {
	Rand []byte // 16バイト
	Sres []byte // 4バイト
	Kc   []byte // 8バイト
}

// SubscriberState は加入者のGSMサービス状態
type SubscriberState string

// 加入者状態の定数
const (
	StateActive   SubscriberState = "ACTIVE"
	StateInactive SubscriberState = "INACTIVE"
)

// AuthAlgo は認証アルゴリズム種別
type AuthAlgo string

// 認証アルゴリズムの定数。現状サポートするのは事前計算済みタプルのみ。
const (
	AlgoPrecomputed AuthAlgo = "PRECOMPUTED"
)

// Subscriber は加入者ストアに保持される加入者データ
type Subscriber struct {
	IMSI       string
	State      SubscriberState
	AuthAlgo   AuthAlgo
	AuthTuples []AuthVector
}

// vectorResponseJSON はVector GatewayレスポンスのJSONパース用内部構造体
type vectorResponseJSON struct {
	RAND string `json:"rand"`
	SRES string `json:"sres"`
	KC   string `json:"kc"`
}

// ProblemDetails はRFC 7807エラーレスポンスを表す
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}
