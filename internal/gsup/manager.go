package gsup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/logging"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

// Manager はIPA層から渡されたGSUPメッセージをデコードし、
// 認証ベクタープロバイダへの問い合わせ結果を応答メッセージとして送出する。
//
// メッセージをまたぐセッション状態は持たない。1つの受信メッセージは
// 高々1つの送信メッセージを生む（応答を返さないメッセージもある）。
type Manager struct {
	provider vector.Provider
	writer   FrameWriter
	maskIMSI bool
}

// NewManager は新しいManagerを生成する
func NewManager(provider vector.Provider, writer FrameWriter, maskIMSI bool) *Manager {
	return &Manager{
		provider: provider,
		writer:   writer,
		maskIMSI: maskIMSI,
	}
}

// HandleMessage はIPA層から渡されたGSUPペイロードを処理する。
// デコード失敗は警告ログを出してこのメッセージを破棄するだけで、
// コネクションにも後続メッセージにも影響しない。
func (m *Manager) HandleMessage(ctx context.Context, payload []byte) {
	msgType, ies, err := Decode(payload)
	if err != nil {
		slog.Warn("GSUPメッセージのデコード失敗",
			"event_id", "GSUP_DECODE_ERR",
			"error", err,
			"payload", fmt.Sprintf("%x", payload),
		)
		return
	}

	switch msgType {
	case MsgSendAuthInfoReq:
		m.handleSendAuthInfoReq(ctx, ies)
	case MsgAuthFailureReport:
		m.handleAuthFailureReport(ies)
	case MsgUpdateLocationReq:
		m.handleUpdateLocationReq(ies)
	case MsgInsertSubsDataRes:
		m.handleInsertSubsDataRes(ies)
	case MsgInsertSubsDataErr:
		m.handleInsertSubsDataErr(ies)
	default:
		slog.Warn("ハンドラ未定義のGSUPメッセージ",
			"event_id", "GSUP_UNHANDLED",
			"msg_type", msgType.String(),
			"ie_count", ies.Len(),
		)
	}
}

// handleSendAuthInfoReq は認証情報要求を処理する。
// プロバイダの失敗はローカルエラーではなく正規のプロトコル結果であり、
// 対応するCauseを載せたSendAuthInfoErrとしてピアに返す。
func (m *Manager) handleSendAuthInfoReq(ctx context.Context, reqIEs *IEMap) {
	imsi, _ := reqIEs.Imsi()
	respIEs := NewIEMap().Set(IEImsi, imsi)

	av, err := m.provider.GetAuthVector(ctx, imsi)
	switch {
	case errors.Is(err, vector.ErrSubscriberNotFound):
		slog.Warn("未登録IMSIからの認証要求",
			"event_id", "AUTH_IMSI_UNKNOWN",
			"imsi", logging.MaskIMSI(imsi, m.maskIMSI),
		)
		respIEs.Set(IECause, uint8(CauseImsiUnknown))
		m.send(MsgSendAuthInfoErr, respIEs)

	case err != nil:
		slog.Error("認証ベクター取得失敗",
			"event_id", "AUTH_VECTOR_ERR",
			"imsi", logging.MaskIMSI(imsi, m.maskIMSI),
			"error", err,
		)
		respIEs.Set(IECause, uint8(CauseNetworkFailure))
		m.send(MsgSendAuthInfoErr, respIEs)

	default:
		slog.Info("認証情報応答を送信",
			"event_id", "AUTH_OK",
			"imsi", logging.MaskIMSI(imsi, m.maskIMSI),
		)
		respIEs.Set(IEAuthTuple, av)
		m.send(MsgSendAuthInfoRes, respIEs)
	}
}

// handleAuthFailureReport は認証失敗レポートを処理する。ピアは応答を期待しない。
func (m *Manager) handleAuthFailureReport(reqIEs *IEMap) {
	imsi, _ := reqIEs.Imsi()
	slog.Info("認証失敗レポート受信",
		"event_id", "AUTH_FAILURE_REPORT",
		"imsi", logging.MaskIMSI(imsi, m.maskIMSI),
	)
}

// handleUpdateLocationReq は位置更新要求を処理する。
// ピア発の交換を完了させる前に、こちらからInsertSubsDataReqを発行する。
// 対応するInsertSubsDataResが届いた時点でUpdateLocationResを返して交換が完了する。
func (m *Manager) handleUpdateLocationReq(reqIEs *IEMap) {
	imsi, _ := reqIEs.Imsi()
	respIEs := NewIEMap().
		Set(IEImsi, imsi).
		Set(IEPDPInfoComplete, []byte{}).
		Set(IEPDPInfo, []byte{}) // エンコーダがワイルドカードAPNの固定値を出力する
	m.send(MsgInsertSubsDataReq, respIEs)
}

// handleInsertSubsDataRes は加入者データ挿入応答を処理し、
// UpdateLocationReqで始まった交換をUpdateLocationResで完了させる。
func (m *Manager) handleInsertSubsDataRes(reqIEs *IEMap) {
	imsi, _ := reqIEs.Imsi()
	respIEs := NewIEMap().Set(IEImsi, imsi)
	m.send(MsgUpdateLocationRes, respIEs)
}

// handleInsertSubsDataErr は加入者データ挿入エラーを処理する。後続メッセージは定義されていない。
func (m *Manager) handleInsertSubsDataErr(reqIEs *IEMap) {
	imsi, _ := reqIEs.Imsi()
	cause, _ := reqIEs.Get(IECause)
	slog.Warn("加入者データ挿入エラー受信",
		"event_id", "ISD_ERR",
		"imsi", logging.MaskIMSI(imsi, m.maskIMSI),
		"cause", cause,
	)
}

// send はメッセージをエンコードしてIPA層へ書き出す。
// エンコード失敗は呼び出し側の契約違反（プログラマエラー）であり、
// 不正なメッセージをピアに送出するくらいなら何も送らない。
func (m *Manager) send(msgType MsgType, ies *IEMap) {
	buf, offset := m.writer.GetWriteBuf(MaxEncodedLen(ies))

	end, err := Encode(buf, offset, msgType, ies)
	if err != nil {
		slog.Error("GSUPエンコード失敗",
			"event_id", "GSUP_ENCODE_ERR",
			"msg_type", msgType.String(),
			"error", err,
		)
		return
	}

	// 実際のメッセージ長でIPAヘッダを書き直す
	m.writer.ResetLength(buf, end-offset)

	if err := m.writer.Write(buf[:end]); err != nil {
		slog.Warn("GSUP応答の書き込み失敗",
			"event_id", "GSUP_WRITE_ERR",
			"msg_type", msgType.String(),
			"error", err,
		)
	}
}
