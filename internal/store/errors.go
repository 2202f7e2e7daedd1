package store

import "errors"

// ストアアクセスエラー
var (
	// ErrValkeyUnavailable はValkeyへのアクセスに失敗した場合のエラー
	ErrValkeyUnavailable = errors.New("valkey unavailable")

	// ErrSubscriberInvalid は加入者データが解釈できない場合のエラー
	ErrSubscriberInvalid = errors.New("invalid subscriber data")
)
