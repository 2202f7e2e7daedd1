package vector

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mocks/vector_mock.go -package=mocks

// Provider は加入者の認証ベクターを解決するインターフェース
type Provider interface {
	// GetAuthVector は指定IMSIの認証ベクターを取得する。
	// 加入者が未登録の場合はErrSubscriberNotFoundを、
	// ベクターを生成できない場合はそれ以外のエラーを返す。
	GetAuthVector(ctx context.Context, imsi string) (AuthVector, error)
}

// SubscriberStore は加入者データへのアクセスを定義する
type SubscriberStore interface {
	// GetSubscriber は指定IMSIの加入者データを取得する。
	// 未登録の場合はErrSubscriberNotFoundを返す。
	GetSubscriber(ctx context.Context, imsi string) (*Subscriber, error)
}
