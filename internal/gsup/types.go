// Package gsup はGSUP (Generic Subscriber Update Protocol) のコーデックと
// プロトコルマネージャを提供する。GSUPはOsmocomスタックがHLR相当エンティティと
// やり取りするための簡易版3GPP MAPで、ASN.1の代わりにTLVエンコーディングを用いる。
package gsup

import "fmt"

// MsgType はGSUPメッセージタイプを表す型（1バイトのワイヤコード）
type MsgType uint8

// GSUPメッセージタイプ定数
const (
	MsgUpdateLocationReq MsgType = 0x04 // ピア発
	MsgUpdateLocationErr MsgType = 0x05
	MsgUpdateLocationRes MsgType = 0x06
	MsgSendAuthInfoReq   MsgType = 0x08 // ピア発
	MsgSendAuthInfoErr   MsgType = 0x09
	MsgSendAuthInfoRes   MsgType = 0x0a
	MsgAuthFailureReport MsgType = 0x0b // ピア発
	MsgInsertSubsDataReq MsgType = 0x10
	MsgInsertSubsDataErr MsgType = 0x11 // ピア発
	MsgInsertSubsDataRes MsgType = 0x12 // ピア発
)

// String はメッセージタイプ名を返す
func (m MsgType) String() string {
	switch m {
	case MsgUpdateLocationReq:
		return "UpdateLocationReq"
	case MsgUpdateLocationErr:
		return "UpdateLocationErr"
	case MsgUpdateLocationRes:
		return "UpdateLocationRes"
	case MsgSendAuthInfoReq:
		return "SendAuthInfoReq"
	case MsgSendAuthInfoErr:
		return "SendAuthInfoErr"
	case MsgSendAuthInfoRes:
		return "SendAuthInfoRes"
	case MsgAuthFailureReport:
		return "AuthFailureReport"
	case MsgInsertSubsDataReq:
		return "InsertSubsDataReq"
	case MsgInsertSubsDataErr:
		return "InsertSubsDataErr"
	case MsgInsertSubsDataRes:
		return "InsertSubsDataRes"
	default:
		return fmt.Sprintf("MsgType(0x%02x)", uint8(m))
	}
}

// IEType はGSUP情報要素 (IE) タイプを表す型（1バイトのワイヤコード）
type IEType uint8

// GSUP IEタイプ定数
const (
	// メッセージに直接エンコードされるIE
	IEImsi            IEType = 0x01
	IECause           IEType = 0x02
	IEAuthTuple       IEType = 0x03
	IEPDPInfoComplete IEType = 0x04
	IEPDPInfo         IEType = 0x05
	IECNDomain        IEType = 0x28

	// 他のIE内にネストされるサブIE
	IERand         IEType = 0x20
	IESres         IEType = 0x21
	IEKc           IEType = 0x22
	IEPDPContextID IEType = 0x10
	IEPDPType      IEType = 0x11
	IEAPNName      IEType = 0x12
)

// String はIEタイプ名を返す
func (t IEType) String() string {
	switch t {
	case IEImsi:
		return "IMSI"
	case IECause:
		return "Cause"
	case IEAuthTuple:
		return "AuthTuple"
	case IEPDPInfoComplete:
		return "PDPInfoComplete"
	case IEPDPInfo:
		return "PDPInfo"
	case IECNDomain:
		return "CNDomain"
	case IERand:
		return "Rand"
	case IESres:
		return "Sres"
	case IEKc:
		return "Kc"
	case IEPDPContextID:
		return "PDPContextID"
	case IEPDPType:
		return "PDPType"
	case IEAPNName:
		return "APNName"
	default:
		return fmt.Sprintf("IEType(0x%02x)", uint8(t))
	}
}

// Cause はCause IEに格納されるエラー原因コード
type Cause uint8

// Cause IEの値
const (
	CauseImsiUnknown    Cause = 0x02
	CauseNetworkFailure Cause = 0x11
	CauseProtocolError  Cause = 0x6f
)

// IEMap は挿入順を保持するIEType→デコード済み値のマップ。
// 標準mapは走査順が不定のため、エンコード結果を決定的にする目的で
// 挿入順のキー列を別途保持する。同一IEタイプを再設定した場合は
// 値のみ更新し、位置は最初の挿入位置を維持する。
//
// 値の型はIEごとに決まっている:
//
//	IMSI              string（10進数字列）
//	Cause, CNDomain   uint8
//	AuthTuple         vector.AuthVector
//	PDPInfoComplete   []byte
//	PDPInfo           []byte（エンコード時は内容に関わらず固定値が出力される）
type IEMap struct {
	order  []IEType
	values map[IEType]any
}

// NewIEMap は空のIEMapを生成する
func NewIEMap() *IEMap {
	return &IEMap{values: make(map[IEType]any)}
}

// Set はIEの値を設定する。戻り値は連鎖呼び出し用に自分自身。
func (m *IEMap) Set(t IEType, v any) *IEMap {
	if _, ok := m.values[t]; !ok {
		m.order = append(m.order, t)
	}
	m.values[t] = v
	return m
}

// Get はIEの値を返す
func (m *IEMap) Get(t IEType) (any, bool) {
	v, ok := m.values[t]
	return v, ok
}

// Imsi はIMSI IEの値を文字列として返す
func (m *IEMap) Imsi() (string, bool) {
	v, ok := m.values[IEImsi]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Len は格納されているIEの数を返す
func (m *IEMap) Len() int {
	return len(m.order)
}

// Types は挿入順のIEタイプ列を返す
func (m *IEMap) Types() []IEType {
	return m.order
}
