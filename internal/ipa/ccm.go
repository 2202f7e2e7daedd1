package ipa

import "log/slog"

// ccmHandler はCCM (Connection Management) ストリームのキープアライブを処理する。
//
// CCMペイロードは1バイトのPurposeフィールドのみ:
//
//	0x00 = Ping（Pongを返す）、0x01 = Pong、その他は無視
type ccmHandler struct {
	writer *Writer
}

func newCCMHandler(writer *Writer) *ccmHandler {
	return &ccmHandler{writer: writer}
}

// handleMessage はCCMメッセージを処理する。関心があるのはピアからのPingのみ。
func (h *ccmHandler) handleMessage(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if payload[0] == CCMPing {
		slog.Debug("Ping受信、Pongを返送")
		return h.sendPong()
	}
	slog.Debug("未対応のCCMメッセージ", "purpose", payload[0])
	return nil
}

// sendPong はピアへPongを返す
func (h *ccmHandler) sendPong() error {
	buf, offset := h.writer.GetWriteBuf(1)
	buf[offset] = CCMPong
	return h.writer.Write(buf)
}
