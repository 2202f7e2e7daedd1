package ipa

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

// MessageHandler はOSMOストリームのGSUPペイロードを処理するハンドラ。
// gsup.Managerが実装する。
type MessageHandler interface {
	HandleMessage(ctx context.Context, payload []byte)
}

// Mux は受信バイト列をIPAフレームに再構成し、ストリームID別に振り分ける。
//
// コネクションごとに1つ生成し、単一のゴルーチンから呼び出すこと。
// 受信チャンクは蓄積バッファに追記され、完成したフレームから順に処理される。
// ヘッダ（3バイト）未満しか溜まっていなければヘッダ待ち、ヘッダ解析後に
// ペイロードが揃っていなければペイロード待ちとなり、いずれも消費せずに
// 次のチャンクを待つ。処理済みフレームの後ろに残った断片だけが保持される。
type Mux struct {
	readbuf []byte
	gsup    MessageHandler
	ccm     *ccmHandler
}

// NewMux は新しいMuxを生成する。transportはCCM応答（Pong）の書き込み先。
func NewMux(transport io.Writer, gsupHandler MessageHandler) *Mux {
	return &Mux{
		gsup: gsupHandler,
		ccm:  newCCMHandler(NewWriter(transport, StreamCCM)),
	}
}

// HandleData は受信データをバッファに追加し、完成したフレームを到着順に処理する。
// 1フレームの処理失敗はログを出して次のフレームへ進むだけで、
// パースループもコネクションも終了させない。
func (m *Mux) HandleData(ctx context.Context, data []byte) {
	m.readbuf = append(m.readbuf, data...)

	begin := 0
	for len(m.readbuf)-begin >= HeaderLen {
		payloadLen := int(binary.BigEndian.Uint16(m.readbuf[begin : begin+2]))
		streamID := m.readbuf[begin+2]
		frameLen := HeaderLen + payloadLen
		if len(m.readbuf)-begin < frameLen {
			break // ペイロード未着。消費せず次のデータを待つ
		}

		payload := m.readbuf[begin+HeaderLen : begin+frameLen]
		if err := m.dispatch(ctx, streamID, payload); err != nil {
			slog.Warn("IPAフレーム処理失敗",
				"event_id", "IPA_FRAME_ERR",
				"stream_id", fmt.Sprintf("0x%02x", streamID),
				"payload_len", payloadLen,
				"error", err,
			)
		}

		begin += frameLen
	}

	// 未処理の残りを先頭へ詰める
	if begin > 0 {
		n := copy(m.readbuf, m.readbuf[begin:])
		m.readbuf = m.readbuf[:n]
	}
}

// dispatch は1フレームのペイロードをストリームIDに応じたハンドラへ渡す
func (m *Mux) dispatch(ctx context.Context, streamID uint8, payload []byte) error {
	switch streamID {
	case StreamCCM:
		return m.ccm.handleMessage(payload)

	case StreamOsmo:
		if len(payload) == 0 {
			return ErrEmptyPayload
		}
		switch payload[0] {
		case OsmoExtnGSUP:
			m.gsup.HandleMessage(ctx, payload[1:])
			return nil
		case OsmoExtnOAP:
			slog.Debug("OAPメッセージは未対応のため破棄")
			return nil
		default:
			// CTRL (0x00) のテキストシェルもここで落とす
			return fmt.Errorf("%w: 0x%02x", ErrUnknownExtension, payload[0])
		}

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownStreamID, streamID)
	}
}

// HandleClosed はコネクション切断時に呼び出され、受信バッファを破棄する。
// 完了待ちの交換（応答待ちのInsertSubsDataReqなど）もここで放棄される。
// タイムアウトやリトライはこの層では行わない。
func (m *Mux) HandleClosed(err error) {
	if err != nil {
		slog.Warn("IPAコネクション切断",
			"event_id", "IPA_CONN_LOST",
			"error", err,
		)
	} else {
		slog.Info("IPAコネクション終了")
	}
	m.readbuf = nil
}
