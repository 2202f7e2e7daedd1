package gsup

import "errors"

// デコードエラー
var (
	// ErrEmptyMessage は長さ0のGSUPメッセージを受信した場合のエラー
	ErrEmptyMessage = errors.New("empty gsup message")

	// ErrUnknownMessageType はメッセージタイプが未知の場合のエラー
	ErrUnknownMessageType = errors.New("unknown gsup message type")

	// ErrTruncatedIE はIEの宣言長に対してバイト列が不足している場合のエラー
	ErrTruncatedIE = errors.New("truncated information element")

	// ErrInvalidLength はIEの長さが許容範囲外の場合のエラー
	ErrInvalidLength = errors.New("information element length out of range")
)

// エンコードエラー
var (
	// ErrMissingMandatoryIE は必須IEが不足している場合のエラー。
	// デコード後のバリデーションとエンコード前のバリデーションで共用する。
	ErrMissingMandatoryIE = errors.New("missing mandatory information element")

	// ErrInvalidValue はIEの値がエンコード不能な場合のエラー
	ErrInvalidValue = errors.New("invalid information element value")

	// ErrNoCodec はコーデック未定義のIEをエンコードしようとした場合のエラー
	ErrNoCodec = errors.New("no codec for information element")
)
