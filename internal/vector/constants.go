package vector

// HTTPヘッダ名
const (
	HeaderTraceID     = "X-Trace-ID"
	HeaderContentType = "Content-Type"
)

// Content-Type
const (
	ContentTypeJSON = "application/json"
)

// 認証ベクターの固定長（バイト）
const (
	RandLen = 16
	SresLen = 4
	KcLen   = 8
)
