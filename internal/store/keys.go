package store

// Valkeyキープレフィックス
const (
	KeyPrefixSubscriber = "sub:" // 加入者情報（ハッシュ）
)

// 加入者ハッシュのフィールド名
const (
	FieldState      = "state"       // GSMサービス状態 (ACTIVE/INACTIVE)
	FieldAuthAlgo   = "auth_algo"   // 認証アルゴリズム (PRECOMPUTED)
	FieldAuthTuples = "auth_tuples" // 事前計算済みタプルのJSON配列
)
