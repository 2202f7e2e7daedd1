package ipa

import "errors"

// フレーム処理エラー。いずれもフレーム単位で破棄されるだけで、
// コネクションを終了させることはない。
var (
	// ErrEmptyPayload はペイロードが空のフレームを受信した場合のエラー
	ErrEmptyPayload = errors.New("empty frame payload")

	// ErrUnknownStreamID は未知のストリームIDのフレームを受信した場合のエラー
	ErrUnknownStreamID = errors.New("unknown ipa stream id")

	// ErrUnknownExtension はOSMOストリームの拡張識別子が未知の場合のエラー
	ErrUnknownExtension = errors.New("unknown osmo protocol extension")
)
