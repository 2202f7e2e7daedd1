package gsup

import (
	"fmt"
	"log/slog"
)

// iePresence はメッセージタイプに対するIEの要否を表す
type iePresence uint8

const (
	presenceMandatory iePresence = iota + 1
	presenceOptional
)

// msgIE はメッセージフォーマット表の1エントリ
type msgIE struct {
	ieType   IEType
	presence iePresence
}

// msgFormats はメッセージタイプごとに有効なIEと要否を定義する静的表
var msgFormats = map[MsgType][]msgIE{
	MsgUpdateLocationReq: {
		{IEImsi, presenceMandatory},
		{IECNDomain, presenceOptional},
	},
	MsgUpdateLocationErr: {
		{IEImsi, presenceMandatory},
		{IECause, presenceMandatory},
	},
	MsgUpdateLocationRes: {
		{IEImsi, presenceMandatory},
	},
	MsgSendAuthInfoReq: {
		{IEImsi, presenceMandatory},
		{IECNDomain, presenceOptional},
	},
	MsgSendAuthInfoErr: {
		{IEImsi, presenceMandatory},
		{IECause, presenceMandatory},
	},
	MsgSendAuthInfoRes: {
		{IEImsi, presenceMandatory},
		{IEAuthTuple, presenceOptional},
	},
	MsgAuthFailureReport: {
		{IEImsi, presenceMandatory},
		{IECNDomain, presenceOptional},
	},
	MsgInsertSubsDataReq: {
		{IEImsi, presenceMandatory},
		{IECNDomain, presenceOptional},
		{IEPDPInfoComplete, presenceOptional},
		{IEPDPInfo, presenceOptional},
	},
	MsgInsertSubsDataErr: {
		{IEImsi, presenceMandatory},
		{IECause, presenceMandatory},
	},
	MsgInsertSubsDataRes: {
		{IEImsi, presenceMandatory},
	},
}

// Decode はGSUPメッセージのバイト列を (メッセージタイプ, IEマップ) にデコードする。
//
// 先頭1バイトがメッセージタイプ、残りは (type, length, value) の並び。
// 未知のIEタイプは前方互換性のため警告ログを出してスキップする
// （必須IEの欠落は走査後のバリデーションで検出される）。
// 同一IEタイプが繰り返された場合は最後の出現が勝つ。
// 末尾に1バイトだけ残った場合はパディングとして無視する。
func Decode(msg []byte) (MsgType, *IEMap, error) {
	if len(msg) == 0 {
		return 0, nil, ErrEmptyMessage
	}

	msgType := MsgType(msg[0])
	if _, ok := msgFormats[msgType]; !ok {
		return 0, nil, fmt.Errorf("%w: 0x%02x", ErrUnknownMessageType, msg[0])
	}

	ies := NewIEMap()
	offset := 1
	for offset+1 < len(msg) { // type + lengthヘッダが読める間
		ieLen := int(msg[offset+1])
		spec, known := ieTable[IEType(msg[offset])]
		if !known {
			slog.Warn("未知のIEをスキップ",
				"event_id", "GSUP_UNKNOWN_IE",
				"ie_type", fmt.Sprintf("0x%02x", msg[offset]),
				"msg_type", msgType.String(),
			)
			offset += 2 + ieLen
			continue
		}
		ieType := IEType(msg[offset])
		offset += 2

		if offset+ieLen > len(msg) {
			return 0, nil, fmt.Errorf("%w: ie=%s declared=%d remaining=%d",
				ErrTruncatedIE, ieType, ieLen, len(msg)-offset)
		}

		val, err := spec.decodeValue(msg[offset : offset+ieLen])
		if err != nil {
			return 0, nil, fmt.Errorf("ie=%s: %w", ieType, err)
		}
		ies.Set(ieType, val)
		offset += ieLen
	}

	if err := validate(msgType, ies); err != nil {
		return 0, nil, err
	}
	return msgType, ies, nil
}

// MaxEncodedLen はIEマップのエンコードに必要な最大バイト数を返す。
// メッセージタイプ1バイト + IEごとに (ヘッダ2バイト + 最大長)。
// Encodeの呼び出し側はこの式で出力バッファを確保すること。
func MaxEncodedLen(ies *IEMap) int {
	size := 1
	for _, t := range ies.Types() {
		size += 2 + ieTable[t].maxLen
	}
	return size
}

// Encode はGSUPメッセージをbufのoffset位置からエンコードし、終端オフセットを返す。
// bufはMaxEncodedLenで求めたサイズ以上を事前確保しておくこと。
// 必須IEの検証はバイト列を書き込む前に行われ、違反時は一切書き込まずに失敗する。
func Encode(buf []byte, offset int, msgType MsgType, ies *IEMap) (int, error) {
	if _, ok := msgFormats[msgType]; !ok {
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownMessageType, uint8(msgType))
	}
	if err := validate(msgType, ies); err != nil {
		return 0, err
	}

	buf[offset] = byte(msgType)
	offset++

	for _, ieType := range ies.Types() {
		spec, ok := ieTable[ieType]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrNoCodec, ieType)
		}
		val, _ := ies.Get(ieType)
		buf[offset] = byte(ieType)
		ieLen, err := spec.encode(val, buf[offset+2:], spec.minLen, spec.maxLen)
		if err != nil {
			return 0, fmt.Errorf("ie=%s: %w", ieType, err)
		}
		buf[offset+1] = byte(ieLen)
		offset += 2 + ieLen
	}
	return offset, nil
}

// validate は必須IEがすべて揃っているか検査する
func validate(msgType MsgType, ies *IEMap) error {
	for _, f := range msgFormats[msgType] {
		if f.presence != presenceMandatory {
			continue
		}
		if _, ok := ies.Get(f.ieType); !ok {
			return fmt.Errorf("%w: ie=%s msg=%s", ErrMissingMandatoryIE, f.ieType, msgType)
		}
	}
	return nil
}
