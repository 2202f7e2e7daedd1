// Package server はIPA/GSUPを話すTCPサーバーを提供する。
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/config"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/gsup"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/ipa"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

// Server はIPA接続を受け付けるTCPサーバー。
// コネクションごとに1ゴルーチンが読み込みループを持ち、
// フレーム処理とそれに伴う書き込みはすべてそのゴルーチン上で同期的に行われる。
// コネクション間で共有される可変状態はないため、ipa/gsup層にロックは不要。
type Server struct {
	addr     string
	provider vector.Provider
	maskIMSI bool

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}

	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewServer は新しいServerを生成する
func NewServer(addr string, provider vector.Provider, maskIMSI bool) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:     addr,
		provider: provider,
		maskIMSI: maskIMSI,
		conns:    make(map[net.Conn]struct{}),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Listen はリッスンソケットを開く
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Addr は実際にリッスンしているアドレスを返す。Listen前は空文字列。
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Serve は接続受け付けループを実行する。Shutdownで停止するまでブロックする。
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil // Shutdownによるクローズ
			}
			return err
		}
		s.trackConn(conn)
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// ListenAndServe はListenとServeをまとめて実行する
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// serveConn は1コネクション分の読み込みループ。
// 受信チャンクをMuxへ渡し、切断時にバッファと未完了の交換を破棄する。
func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrackConn(conn)
	defer conn.Close()

	connID := uuid.New().String()
	ctx := vector.WithTraceID(s.baseCtx, connID)

	slog.Info("IPAコネクション受付",
		"event_id", "CONN_ACCEPT",
		"conn_id", connID,
		"remote_addr", conn.RemoteAddr().String(),
	)

	writer := ipa.NewOsmoWriter(conn, ipa.OsmoExtnGSUP)
	manager := gsup.NewManager(s.provider, writer, s.maskIMSI)
	mux := ipa.NewMux(conn, manager)

	buf := make([]byte, config.ReadBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			mux.HandleData(ctx, buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				mux.HandleClosed(nil)
			} else {
				mux.HandleClosed(err)
			}
			return
		}
	}
}

// Shutdown はサーバーをグレースフルに停止する。
// リッスンソケットを閉じて新規接続を止め、既存コネクションの終了を待つ。
// ctxの期限までに終わらない場合は残りのコネクションを強制切断する。
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	if s.ln != nil {
		s.ln.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.closeConns()
		return ctx.Err()
	}
}

func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
