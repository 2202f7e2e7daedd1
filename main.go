// Package main はGSUP/IPAブリッジ（HLR側シグナリングサーバー）のエントリーポイント。
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/config"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/server"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/store"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

func main() {
	// 1. 環境変数読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定読み込み失敗", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化（JSON形式、INFO以上）
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("app", "gsup-bridge")
	slog.SetDefault(logger)

	slog.Info("gsup-bridge起動開始",
		"listen_addr", cfg.ListenAddr,
		"vector_api_url", cfg.VectorAPIURL,
	)

	// 3. 認証ベクタープロバイダ初期化
	//    VECTOR_API_URL設定時はHTTPゲートウェイ、未設定時はValkeyストア直参照
	var provider vector.Provider
	if cfg.UseGateway() {
		provider = vector.NewClient(cfg)
		slog.Info("Vector Gatewayバックエンドを使用", "url", cfg.VectorAPIURL)
	} else {
		valkeyClient, err := store.NewValkeyClient(cfg)
		if err != nil {
			slog.Error("Valkey接続失敗",
				"event_id", "VALKEY_CONN_ERR",
				"error", err,
			)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		slog.Info("Valkey接続完了", "addr", cfg.ValkeyAddr())
		provider = vector.NewProcessor(store.NewSubscriberStore(valkeyClient))
	}

	// 4. TCPサーバー起動
	srv := server.NewServer(cfg.ListenAddr, provider, cfg.LogMaskIMSI)
	if err := srv.Listen(); err != nil {
		slog.Error("リッスン失敗", "error", err, "addr", cfg.ListenAddr)
		os.Exit(1)
	}

	go func() {
		slog.Info("IPA/GSUPサーバー起動", "addr", srv.Addr())
		if err := srv.Serve(); err != nil {
			slog.Error("サーバーエラー", "error", err)
		}
	}()

	// 5. シグナル待機 → Graceful Shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	slog.Info("シグナル受信、シャットダウン開始", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("シャットダウンエラー", "error", err)
	}

	slog.Info("gsup-bridge停止完了")
}
