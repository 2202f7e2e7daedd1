package ipa

import (
	"encoding/binary"
	"io"
)

// Writer は上位プロトコルのメッセージにIPAヘッダを前置して書き出す。
// ストリームIDとOSMO拡張識別子はWriter生成時に固定される。
type Writer struct {
	w         io.Writer
	streamID  uint8
	osmoExtn  uint8
	hasExtn   bool
	headerLen int
}

// NewWriter は拡張識別子なしのストリーム用Writerを生成する
func NewWriter(w io.Writer, streamID uint8) *Writer {
	return &Writer{
		w:         w,
		streamID:  streamID,
		headerLen: HeaderLen,
	}
}

// NewOsmoWriter はOSMOストリーム用のWriterを生成する。
// 拡張識別子が1バイト分ヘッダを占める。
func NewOsmoWriter(w io.Writer, osmoExtn uint8) *Writer {
	return &Writer{
		w:         w,
		streamID:  StreamOsmo,
		osmoExtn:  osmoExtn,
		hasExtn:   true,
		headerLen: HeaderLen + 1,
	}
}

// GetWriteBuf はヘッダを含むメッセージ全体を1回で確保し、
// ヘッダ書き込み済みのバッファとペイロード開始オフセットを返す。
// フレームごとの再確保とコピーを避けるための作り。
func (wr *Writer) GetWriteBuf(length int) ([]byte, int) {
	buf := make([]byte, wr.headerLen+length)
	wr.ResetLength(buf, length)
	return buf, wr.headerLen
}

// ResetLength は指定のペイロード長でIPAヘッダを書き直す。
// 最大長でバッファを確保した呼び出し側が、実際のサイズ確定後に使う。
// 宣言長は拡張バイトを含んで数える。
func (wr *Writer) ResetLength(buf []byte, length int) {
	if wr.hasExtn {
		binary.BigEndian.PutUint16(buf[0:2], uint16(length+1))
		buf[2] = wr.streamID
		buf[3] = wr.osmoExtn
	} else {
		binary.BigEndian.PutUint16(buf[0:2], uint16(length))
		buf[2] = wr.streamID
	}
}

// Write はバッファをトランスポートへ書き出す。
// 部分書き込みのリトライはトランスポート側の責務で、この層では判断しない。
func (wr *Writer) Write(buf []byte) error {
	_, err := wr.w.Write(buf)
	return err
}
