package store

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/config"
	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

const testImsi = "001010000000001"

const testTuplesJSON = `[
	{"rand":"6e6989be6cee7154543770ae80b1ef0d","sres":"d4ac8b53","kc":"9ff5342eb95d8800"},
	{"rand":"000102030405060708090a0b0c0d0e0f","sres":"00010203","kc":"0001020304050607"}
]`

func newTestConfig(t *testing.T, addr string) *config.Config {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("failed to split addr %q: %v", addr, err)
	}
	return &config.Config{
		RedisHost: host,
		RedisPort: port,
	}
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, vector.SubscriberStore) {
	t.Helper()
	mr := miniredis.RunT(t)

	vc, err := NewValkeyClient(newTestConfig(t, mr.Addr()))
	if err != nil {
		t.Fatalf("NewValkeyClient failed: %v", err)
	}
	t.Cleanup(func() { vc.Close() })

	return mr, NewSubscriberStore(vc)
}

func TestGetSubscriber(t *testing.T) {
	mr, s := newTestStore(t)
	mr.HSet(KeyPrefixSubscriber+testImsi,
		FieldState, "ACTIVE",
		FieldAuthAlgo, "PRECOMPUTED",
		FieldAuthTuples, testTuplesJSON,
	)

	sub, err := s.GetSubscriber(context.Background(), testImsi)
	if err != nil {
		t.Fatalf("GetSubscriber failed: %v", err)
	}

	if sub.IMSI != testImsi {
		t.Errorf("imsi: got %q, want %q", sub.IMSI, testImsi)
	}
	if sub.State != vector.StateActive {
		t.Errorf("state: got %q, want %q", sub.State, vector.StateActive)
	}
	if sub.AuthAlgo != vector.AlgoPrecomputed {
		t.Errorf("auth algo: got %q, want %q", sub.AuthAlgo, vector.AlgoPrecomputed)
	}
	if len(sub.AuthTuples) != 2 {
		t.Fatalf("tuple count: got %d, want 2", len(sub.AuthTuples))
	}

	wantRand := []byte{0x6e, 0x69, 0x89, 0xbe, 0x6c, 0xee, 0x71, 0x54, 0x54, 0x37, 0x70, 0xae, 0x80, 0xb1, 0xef, 0x0d}
	if !bytes.Equal(sub.AuthTuples[0].Rand, wantRand) {
		t.Errorf("rand: got %x, want %x", sub.AuthTuples[0].Rand, wantRand)
	}
	wantSres := []byte{0xd4, 0xac, 0x8b, 0x53}
	if !bytes.Equal(sub.AuthTuples[0].Sres, wantSres) {
		t.Errorf("sres: got %x, want %x", sub.AuthTuples[0].Sres, wantSres)
	}
	wantKc := []byte{0x9f, 0xf5, 0x34, 0x2e, 0xb9, 0x5d, 0x88, 0x00}
	if !bytes.Equal(sub.AuthTuples[0].Kc, wantKc) {
		t.Errorf("kc: got %x, want %x", sub.AuthTuples[0].Kc, wantKc)
	}
}

func TestGetSubscriberWithoutTuples(t *testing.T) {
	mr, s := newTestStore(t)
	mr.HSet(KeyPrefixSubscriber+testImsi,
		FieldState, "INACTIVE",
		FieldAuthAlgo, "PRECOMPUTED",
	)

	sub, err := s.GetSubscriber(context.Background(), testImsi)
	if err != nil {
		t.Fatalf("GetSubscriber failed: %v", err)
	}
	if sub.State != vector.StateInactive {
		t.Errorf("state: got %q, want %q", sub.State, vector.StateInactive)
	}
	if len(sub.AuthTuples) != 0 {
		t.Errorf("tuple count: got %d, want 0", len(sub.AuthTuples))
	}
}

func TestGetSubscriberNotFound(t *testing.T) {
	_, s := newTestStore(t)

	_, err := s.GetSubscriber(context.Background(), "999999999999999")
	if !errors.Is(err, vector.ErrSubscriberNotFound) {
		t.Errorf("expected ErrSubscriberNotFound, got: %v", err)
	}
}

func TestGetSubscriberInvalidTuplesJSON(t *testing.T) {
	mr, s := newTestStore(t)
	mr.HSet(KeyPrefixSubscriber+testImsi,
		FieldState, "ACTIVE",
		FieldAuthAlgo, "PRECOMPUTED",
		FieldAuthTuples, "{not json",
	)

	_, err := s.GetSubscriber(context.Background(), testImsi)
	if !errors.Is(err, ErrSubscriberInvalid) {
		t.Errorf("expected ErrSubscriberInvalid, got: %v", err)
	}
}

func TestGetSubscriberInvalidTupleHex(t *testing.T) {
	mr, s := newTestStore(t)
	mr.HSet(KeyPrefixSubscriber+testImsi,
		FieldState, "ACTIVE",
		FieldAuthAlgo, "PRECOMPUTED",
		FieldAuthTuples, `[{"rand":"zzzz","sres":"d4ac8b53","kc":"9ff5342eb95d8800"}]`,
	)

	_, err := s.GetSubscriber(context.Background(), testImsi)
	if !errors.Is(err, ErrSubscriberInvalid) {
		t.Errorf("expected ErrSubscriberInvalid, got: %v", err)
	}
}

func TestGetSubscriberBadTupleLengths(t *testing.T) {
	mr, s := newTestStore(t)
	// randが8バイトしかない
	mr.HSet(KeyPrefixSubscriber+testImsi,
		FieldState, "ACTIVE",
		FieldAuthAlgo, "PRECOMPUTED",
		FieldAuthTuples, `[{"rand":"6e6989be6cee7154","sres":"d4ac8b53","kc":"9ff5342eb95d8800"}]`,
	)

	_, err := s.GetSubscriber(context.Background(), testImsi)
	if !errors.Is(err, ErrSubscriberInvalid) {
		t.Errorf("expected ErrSubscriberInvalid, got: %v", err)
	}
}
