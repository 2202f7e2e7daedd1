package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/oyaguma3/gsup-hlr-bridge-poc/internal/vector"
)

// subscriberStore はvector.SubscriberStoreインターフェースの実装。
// 加入者は "sub:<imsi>" のハッシュに保持される。
type subscriberStore struct {
	vc *ValkeyClient
}

// NewSubscriberStore は新しいSubscriberStoreを生成する
func NewSubscriberStore(vc *ValkeyClient) vector.SubscriberStore {
	return &subscriberStore{vc: vc}
}

// authTupleJSON は auth_tuples フィールドのJSON要素（各フィールドはhex文字列）
type authTupleJSON struct {
	Rand string `json:"rand"`
	Sres string `json:"sres"`
	Kc   string `json:"kc"`
}

// GetSubscriber は指定IMSIの加入者データを取得する
func (s *subscriberStore) GetSubscriber(ctx context.Context, imsi string) (*vector.Subscriber, error) {
	key := KeyPrefixSubscriber + imsi
	result, err := s.vc.Client().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValkeyUnavailable, err)
	}

	// キーが存在しない場合、HGetAllは空mapを返す
	if len(result) == 0 {
		return nil, vector.ErrSubscriberNotFound
	}

	sub := &vector.Subscriber{
		IMSI:     imsi,
		State:    vector.SubscriberState(result[FieldState]),
		AuthAlgo: vector.AuthAlgo(result[FieldAuthAlgo]),
	}

	tuplesJSON, ok := result[FieldAuthTuples]
	if ok && tuplesJSON != "" {
		tuples, err := parseAuthTuples(tuplesJSON)
		if err != nil {
			return nil, err
		}
		sub.AuthTuples = tuples
	}

	return sub, nil
}

// parseAuthTuples はauth_tuplesフィールドのJSONをAuthVector列に変換する
func parseAuthTuples(tuplesJSON string) ([]vector.AuthVector, error) {
	var raw []authTupleJSON
	if err := json.Unmarshal([]byte(tuplesJSON), &raw); err != nil {
		return nil, fmt.Errorf("%w: auth_tuples JSON parse error: %v", ErrSubscriberInvalid, err)
	}

	tuples := make([]vector.AuthVector, 0, len(raw))
	for i, t := range raw {
		randBytes, err := hex.DecodeString(t.Rand)
		if err != nil {
			return nil, fmt.Errorf("%w: tuple[%d] rand hex decode: %v", ErrSubscriberInvalid, i, err)
		}
		sresBytes, err := hex.DecodeString(t.Sres)
		if err != nil {
			return nil, fmt.Errorf("%w: tuple[%d] sres hex decode: %v", ErrSubscriberInvalid, i, err)
		}
		kcBytes, err := hex.DecodeString(t.Kc)
		if err != nil {
			return nil, fmt.Errorf("%w: tuple[%d] kc hex decode: %v", ErrSubscriberInvalid, i, err)
		}
		if len(randBytes) != vector.RandLen || len(sresBytes) != vector.SresLen || len(kcBytes) != vector.KcLen {
			return nil, fmt.Errorf("%w: tuple[%d] bad lengths: rand=%d sres=%d kc=%d",
				ErrSubscriberInvalid, i, len(randBytes), len(sresBytes), len(kcBytes))
		}
		tuples = append(tuples, vector.AuthVector{
			Rand: randBytes,
			Sres: sresBytes,
			Kc:   kcBytes,
		})
	}
	return tuples, nil
}
