package usecase

import (
	"context"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"

	"github.com/google/uuid"
)

// 認証済みの操作者（middlewareがUserから作る）
type Actor struct {
	UserID   int64
	Username string
	Address  string
	IsAdmin  bool
}

func (a Actor) canAccess(ownerID int64) bool {
	return a.IsAdmin || (a.UserID > 0 && a.UserID == ownerID)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// 冪等キー
type KeyGenerator interface {
	NewKey() string
}

type uuidKeyGenerator struct{}

func (uuidKeyGenerator) NewKey() string { return uuid.NewString() }

// 注文イベントの送信先（infra/event）
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error
}
