package gsup

import (
	"fmt"

	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

// ieSpec は1つのIEの静的フォーマット定義。
// 長さ境界（バイト単位、両端含む）とタイプ別のエンコード/デコード関数を持つ。
type ieSpec struct {
	minLen int
	maxLen int
	decode func(val []byte) (any, error)
	encode func(val any, buf []byte, minLen, maxLen int) (int, error)
}

// decodeValue は長さ検査の後にタイプ別デコード関数を呼び出す。
// 範囲外の入力は黙って切り詰めず、必ずErrInvalidLengthを返す。
func (s ieSpec) decodeValue(val []byte) (any, error) {
	if len(val) < s.minLen || len(val) > s.maxLen {
		return nil, fmt.Errorf("%w: %d (%d-%d)", ErrInvalidLength, len(val), s.minLen, s.maxLen)
	}
	return s.decode(val)
}

// ieTable はIETypeごとの静的フォーマット表。
// プロセス起動時に一度構築される読み取り専用データなので、
// コネクションやゴルーチンをまたいで共有しても安全。
var ieTable = map[IEType]ieSpec{
	IEImsi:            {0, 8, decodeImsi, encodeImsi},
	IECause:           {1, 1, decodeNum, encodeNum},
	IEAuthTuple:       {34, 34, decodeAuthTuple, encodeAuthTuple},
	IECNDomain:        {1, 1, decodeNum, encodeNum},
	IEPDPInfoComplete: {0, 0, decodeBytes, encodeBytes},
	IEPDPInfo:         {10, 109, decodeBytes, encodePDPInfo},
}

// decodeImsi はBCDエンコードされたIMSIバイト列を数字文字列に変換する。
// 各バイトは下位ニブルが先の数字、上位ニブルが次の数字。
// 桁数が奇数の場合、最終バイトの上位ニブルは0xFで埋められる。
func decodeImsi(val []byte) (any, error) {
	buf := make([]byte, 0, len(val)*2)
	for _, byt := range val {
		buf = append(buf, '0'+(byt&0x0f))
		if byt>>4 != 0x0f {
			buf = append(buf, '0'+(byt>>4))
		}
	}
	return string(buf), nil
}

// encodeImsi は数字文字列のIMSIをBCDバイト列にエンコードする
func encodeImsi(val any, buf []byte, minLen, maxLen int) (int, error) {
	imsi, ok := val.(string)
	if !ok {
		return 0, fmt.Errorf("%w: imsi must be a string, got %T", ErrInvalidValue, val)
	}
	for i := 0; i < len(imsi); i++ {
		if imsi[i] < '0' || imsi[i] > '9' {
			return 0, fmt.Errorf("%w: imsi has non-digits: %q", ErrInvalidValue, imsi)
		}
	}
	length := (len(imsi) + 1) / 2
	if length < minLen || length > maxLen {
		return 0, fmt.Errorf("%w: imsi %q encodes to %d bytes", ErrInvalidLength, imsi, length)
	}
	for i := 0; i < length; i++ {
		digit1 := imsi[2*i] - '0'
		digit2 := byte(0x0f)
		if 2*i+1 < len(imsi) {
			digit2 = imsi[2*i+1] - '0'
		}
		buf[i] = digit1 | digit2<<4
	}
	return length, nil
}

// decodeNum は1バイトの数値IE (Cause, CNDomain) をデコードする
func decodeNum(val []byte) (any, error) {
	return val[0], nil
}

// encodeNum は1バイトの数値IEをエンコードする
func encodeNum(val any, buf []byte, _, _ int) (int, error) {
	switch v := val.(type) {
	case uint8:
		buf[0] = v
	case Cause:
		buf[0] = uint8(v)
	default:
		return 0, fmt.Errorf("%w: numeric ie must be a uint8, got %T", ErrInvalidValue, val)
	}
	return 1, nil
}

// decodeBytes はIEの値をそのままコピーして返す
func decodeBytes(val []byte) (any, error) {
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// encodeBytes はバイト列IEをそのままコピーしてエンコードする
func encodeBytes(val any, buf []byte, minLen, maxLen int) (int, error) {
	b, ok := val.([]byte)
	if !ok {
		return 0, fmt.Errorf("%w: bytes ie must be a []byte, got %T", ErrInvalidValue, val)
	}
	if len(b) < minLen || len(b) > maxLen {
		return 0, fmt.Errorf("%w: %d (%d-%d)", ErrInvalidLength, len(b), minLen, maxLen)
	}
	copy(buf, b)
	return len(b), nil
}

// AuthTuple IEの固定レイアウト（34バイト）:
//
//	[0x20, 16, rand(16)] [0x21, 4, sres(4)] [0x22, 8, kc(8)]
//
// レイアウトが静的なので、デコードは汎用TLV走査ではなく
// 固定オフセットで3フィールドを取り出す。
func decodeAuthTuple(val []byte) (any, error) {
	av := vector.AuthVector{
		Rand: make([]byte, vector.RandLen),
		Sres: make([]byte, vector.SresLen),
		Kc:   make([]byte, vector.KcLen),
	}
	copy(av.Rand, val[2:18])
	copy(av.Sres, val[20:24])
	copy(av.Kc, val[26:34])
	return av, nil
}

// encodeAuthTuple はAuthVectorをサブIEヘッダ付きの34バイトにエンコードする
func encodeAuthTuple(val any, buf []byte, _, _ int) (int, error) {
	av, ok := val.(vector.AuthVector)
	if !ok {
		return 0, fmt.Errorf("%w: auth tuple must be a vector.AuthVector, got %T", ErrInvalidValue, val)
	}
	if len(av.Rand) != vector.RandLen || len(av.Sres) != vector.SresLen || len(av.Kc) != vector.KcLen {
		return 0, fmt.Errorf("%w: bad auth tuple: rand=%d sres=%d kc=%d bytes",
			ErrInvalidValue, len(av.Rand), len(av.Sres), len(av.Kc))
	}
	buf[0] = byte(IERand)
	buf[1] = vector.RandLen
	copy(buf[2:18], av.Rand)
	buf[18] = byte(IESres)
	buf[19] = vector.SresLen
	copy(buf[20:24], av.Sres)
	buf[24] = byte(IEKc)
	buf[25] = vector.KcLen
	copy(buf[26:34], av.Kc)
	return 34, nil
}

// pdpInfoWildcard はPDP Info IEとして常に出力する固定値。
// コンテキストID=1、PDPタイプ=IPv4 (0x0121)、APN='*' で
// 加入者に全APNへのアクセスを許可する。
var pdpInfoWildcard = []byte{
	byte(IEPDPContextID), 1, 1,
	byte(IEPDPType), 2, 0x01, 0x21,
	byte(IEAPNName), 2, 1, '*',
}

// encodePDPInfo はPDP Info IEをエンコードする。
// 渡された値に関わらずワイルドカードAPNの固定11バイトを出力する。
func encodePDPInfo(_ any, buf []byte, _, _ int) (int, error) {
	copy(buf, pdpInfoWildcard)
	return len(pdpInfoWildcard), nil
}
