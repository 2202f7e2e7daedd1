package vector

import (
	"context"
	"fmt"
)

// Processor は加入者ストアの事前計算済み認証タプルから認証ベクターを
// 解決するProvider実装。暗号アルゴリズムの実行は行わず、
// 加入者ごとにストアへ登録されたタプルをそのまま払い出す。
type Processor struct {
	store SubscriberStore
}

// NewProcessor は新しいProcessorを生成する
func NewProcessor(store SubscriberStore) *Processor {
	return &Processor{store: store}
}

// GetAuthVector は加入者ストアを参照して認証ベクターを返す。
// GSMサービスが有効でない、アルゴリズムが未知、タプル未登録は
// いずれもベクター生成失敗として扱う。
func (p *Processor) GetAuthVector(ctx context.Context, imsi string) (AuthVector, error) {
	sub, err := p.store.GetSubscriber(ctx, imsi)
	if err != nil {
		return AuthVector{}, err
	}

	if sub.State != StateActive {
		return AuthVector{}, fmt.Errorf("%w: state=%s", ErrServiceNotActive, sub.State)
	}
	if sub.AuthAlgo != AlgoPrecomputed {
		return AuthVector{}, fmt.Errorf("%w: %s", ErrUnknownAuthAlgo, sub.AuthAlgo)
	}
	if len(sub.AuthTuples) == 0 {
		return AuthVector{}, ErrAuthTupleMissing
	}

	return sub.AuthTuples[0], nil
}
