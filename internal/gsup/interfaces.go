package gsup

// FrameWriter はエンコード済みGSUPメッセージを下位のフレーミング層へ渡す
// インターフェース。ipa.Writerが実装する。
type FrameWriter interface {
	// GetWriteBuf はヘッダ込みのバッファと、ペイロード書き込み開始位置を返す
	GetWriteBuf(length int) ([]byte, int)

	// ResetLength は実際のペイロード長でヘッダを書き直す。
	// 最大長で確保したバッファの一部しか使わなかった場合に呼び出す。
	ResetLength(buf []byte, length int)

	// Write はバッファをトランスポートへ書き出す
	Write(buf []byte) error
}
