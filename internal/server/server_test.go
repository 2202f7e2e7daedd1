package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/config"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/store"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

const (
	knownImsi   = "001555000001276"
	unknownImsi = "999999999999999"
)

// knownImsi / unknownImsi のBCDエンコード（8バイト）
var (
	knownImsiBCD   = []byte{0x00, 0x51, 0x55, 0x00, 0x00, 0x10, 0x72, 0xf6}
	unknownImsiBCD = []byte{0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0xf9}
)

// startTestServer はminiredisに加入者を投入したサーバーを起動し、アドレスを返す
func startTestServer(t *testing.T) string {
	t.Helper()

	mr := miniredis.RunT(t)
	mr.HSet(store.KeyPrefixSubscriber+knownImsi,
		store.FieldState, "ACTIVE",
		store.FieldAuthAlgo, "PRECOMPUTED",
		store.FieldAuthTuples, `[{"rand":"6e6989be6cee7154543770ae80b1ef0d","sres":"d4ac8b53","kc":"9ff5342eb95d8800"}]`,
	)

	host, port, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("failed to split addr: %v", err)
	}
	vc, err := store.NewValkeyClient(&config.Config{RedisHost: host, RedisPort: port})
	if err != nil {
		t.Fatalf("NewValkeyClient failed: %v", err)
	}
	t.Cleanup(func() { vc.Close() })

	provider := vector.NewProcessor(store.NewSubscriberStore(vc))
	srv := NewServer("127.0.0.1:0", provider, true)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go srv.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return srv.Addr()
}

func dialTestServer(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	t.Cleanup(func() { conn.Close() })
	return conn
}

// osmoFrame はGSUPメッセージをIPAフレーム（OSMOストリーム、GSUP拡張）に包む
func osmoFrame(gsupMsg []byte) []byte {
	frame := make([]byte, 4+len(gsupMsg))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(gsupMsg)+1))
	frame[2] = 0xee
	frame[3] = 0x05
	copy(frame[4:], gsupMsg)
	return frame
}

// readFrame はIPAフレームを1つ読み込み、ヘッダ込みで返す
func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	header := make([]byte, 3)
	if _, err := io.ReadFull(conn, header); err != nil {
		t.Fatalf("failed to read frame header: %v", err)
	}
	payloadLen := int(binary.BigEndian.Uint16(header[0:2]))
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(conn, payload); err != nil {
		t.Fatalf("failed to read frame payload: %v", err)
	}
	return append(header, payload...)
}

func TestServerPingPong(t *testing.T) {
	addr := startTestServer(t)
	conn := dialTestServer(t, addr)

	if _, err := conn.Write([]byte{0x00, 0x01, 0xfe, 0x00}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := []byte{0x00, 0x01, 0xfe, 0x01}
	if got := readFrame(t, conn); !bytes.Equal(got, want) {
		t.Errorf("pong: got %x, want %x", got, want)
	}
}

func TestServerSendAuthInfo(t *testing.T) {
	addr := startTestServer(t)
	conn := dialTestServer(t, addr)

	req := append([]byte{0x08, 0x01, 0x08}, knownImsiBCD...)
	if _, err := conn.Write(osmoFrame(req)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := []byte{0x00, 0x30, 0xee, 0x05, 0x0a}
	want = append(want, 0x01, 0x08)
	want = append(want, knownImsiBCD...)
	want = append(want, 0x03, 0x22)
	want = append(want, 0x20, 0x10)
	want = append(want, 0x6e, 0x69, 0x89, 0xbe, 0x6c, 0xee, 0x71, 0x54, 0x54, 0x37, 0x70, 0xae, 0x80, 0xb1, 0xef, 0x0d)
	want = append(want, 0x21, 0x04, 0xd4, 0xac, 0x8b, 0x53)
	want = append(want, 0x22, 0x08, 0x9f, 0xf5, 0x34, 0x2e, 0xb9, 0x5d, 0x88, 0x00)

	if got := readFrame(t, conn); !bytes.Equal(got, want) {
		t.Errorf("auth response:\n got %x\nwant %x", got, want)
	}
}

func TestServerSendAuthInfoUnknownImsi(t *testing.T) {
	addr := startTestServer(t)
	conn := dialTestServer(t, addr)

	req := append([]byte{0x08, 0x01, 0x08}, unknownImsiBCD...)
	if _, err := conn.Write(osmoFrame(req)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// IMSI Unknown (0x02) を載せたSendAuthInfoErr
	want := []byte{0x00, 0x0f, 0xee, 0x05, 0x09, 0x01, 0x08}
	want = append(want, unknownImsiBCD...)
	want = append(want, 0x02, 0x01, 0x02)

	if got := readFrame(t, conn); !bytes.Equal(got, want) {
		t.Errorf("error response:\n got %x\nwant %x", got, want)
	}
}

func TestServerUpdateLocationExchange(t *testing.T) {
	addr := startTestServer(t)
	conn := dialTestServer(t, addr)

	// UpdateLocationReqに対してサーバーがInsertSubsDataReqを発行する
	ulr := append([]byte{0x04, 0x01, 0x08}, knownImsiBCD...)
	if _, err := conn.Write(osmoFrame(ulr)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	wantISD := []byte{0x00, 0x1b, 0xee, 0x05, 0x10, 0x01, 0x08}
	wantISD = append(wantISD, knownImsiBCD...)
	wantISD = append(wantISD, 0x04, 0x00)
	wantISD = append(wantISD, 0x05, 0x0b, 0x10, 0x01, 0x01, 0x11, 0x02, 0x01, 0x21, 0x12, 0x02, 0x01, 0x2a)

	if got := readFrame(t, conn); !bytes.Equal(got, wantISD) {
		t.Fatalf("insert subscriber data request:\n got %x\nwant %x", got, wantISD)
	}

	// InsertSubsDataResを返すとUpdateLocationResで交換が完了する
	isdRes := append([]byte{0x12, 0x01, 0x08}, knownImsiBCD...)
	if _, err := conn.Write(osmoFrame(isdRes)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	wantULRes := []byte{0x00, 0x0c, 0xee, 0x05, 0x06, 0x01, 0x08}
	wantULRes = append(wantULRes, knownImsiBCD...)

	if got := readFrame(t, conn); !bytes.Equal(got, wantULRes) {
		t.Errorf("update location response:\n got %x\nwant %x", got, wantULRes)
	}
}

func TestServerMalformedMessageKeepsConnection(t *testing.T) {
	addr := startTestServer(t)
	conn := dialTestServer(t, addr)

	// デコード不能なGSUPメッセージを送ってもコネクションは生きている
	if _, err := conn.Write(osmoFrame([]byte{0xff, 0xff})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := conn.Write([]byte{0x00, 0x01, 0xfe, 0x00}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := []byte{0x00, 0x01, 0xfe, 0x01}
	if got := readFrame(t, conn); !bytes.Equal(got, want) {
		t.Errorf("pong: got %x, want %x", got, want)
	}
}

func TestServerShutdown(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := net.SplitHostPort(mr.Addr())
	vc, err := store.NewValkeyClient(&config.Config{RedisHost: host, RedisPort: port})
	if err != nil {
		t.Fatalf("NewValkeyClient failed: %v", err)
	}
	defer vc.Close()

	provider := vector.NewProcessor(store.NewSubscriberStore(vc))
	srv := NewServer("127.0.0.1:0", provider, true)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}
