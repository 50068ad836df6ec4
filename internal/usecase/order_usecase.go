package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	"github.com/NghiaPh49487/Back-End-DATN/internal/logging"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	defaultCancelReason  = "customer requested"
	maxCancelReasonLen   = 500
	maxIdempotencyKeyLen = 255
	myOrdersLimit        = 50
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	publisher OrderEventPublisher
	clock     Clock
	keys      KeyGenerator
}

// publisherがnilならイベントは送らない
func NewOrderUsecase(tx repo.TransactionManager, publisher OrderEventPublisher) *OrderUsecase {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &OrderUsecase{tx: tx, publisher: publisher, clock: systemClock{}, keys: uuidKeyGenerator{}}
}

type CreateOrderInput struct {
	CartID         int64
	IdempotencyKey string
}

type OrderItemOutput struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	CartID          int64             `json:"cart_id"`
	Status          model.OrderStatus `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentMethod   string            `json:"payment_method"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	CancelReason    *string           `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy     *int64            `json:"cancelled_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Items           []OrderItemOutput `json:"items"`

	// 同じ冪等キーで既存注文を返したとき true
	Replayed bool `json:"-"`
}

// CreateOrder はカートを注文に変換する。
// 注文・明細・在庫減算・履歴・カートクリアは1トランザクション。
func (u *OrderUsecase) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if in.CartID <= 0 {
		return OrderOutput{}, validationf("invalid cart_id")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = u.keys.NewKey()
	}
	if len(key) > maxIdempotencyKeyLen {
		return OrderOutput{}, validationf("invalid idempotency key")
	}

	var (
		out     OrderOutput
		created model.Order
		items   []model.OrderItem
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, actor.UserID, key)
		if err != nil {
			return internal(err)
		}
		if found {
			existingItems, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return internal(err)
			}
			out = toOrderOutput(existing, existingItems)
			out.Replayed = true
			return nil
		}

		cart, err := r.Carts().FindByID(ctx, in.CartID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("cart %d", in.CartID)
		}
		if err != nil {
			return internal(err)
		}
		//他人のカートは注文できない
		if cart.UserID != actor.UserID {
			return ErrForbidden
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return internal(err)
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		lines, err := loadOrderLines(ctx, r, cartItems)
		if err != nil {
			return err
		}

		//事前チェック（案内用）。確定判定は減算時の条件付きUPDATE
		if err := precheckStock(lines); err != nil {
			return err
		}

		total := decimal.Zero
		for _, ln := range lines {
			total = total.Add(ln.price.Mul(decimal.NewFromInt(ln.item.Quantity)))
		}

		now := u.clock.Now()
		created, err = r.Orders().Create(ctx, model.Order{
			UserID:          actor.UserID,
			CartID:          cart.ID,
			Status:          model.OrderStatusPending,
			ShippingAddress: actor.Address,
			PaymentMethod:   model.PaymentMethodCOD,
			TotalPrice:      total,
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		//ロック順を揃えるためvariant_id順に処理する
		sort.Slice(lines, func(i, j int) bool { return lines[i].item.VariantID < lines[j].item.VariantID })

		snapshots := make([]model.OrderItem, 0, len(lines))
		for _, ln := range lines {
			snapshots = append(snapshots, model.OrderItem{
				ProductID:           ln.item.ProductID,
				VariantID:           ln.item.VariantID,
				ProductNameSnapshot: ln.productName,
				Quantity:            ln.item.Quantity,
				Price:               ln.price,
				CreatedAt:           now,
			})
		}
		items, err = r.OrderItems().CreateBulk(ctx, created.ID, snapshots)
		if err != nil {
			return internal(err)
		}

		reason := fmt.Sprintf("order #%d", created.ID)
		for _, ln := range lines {
			if _, _, err := applyLedger(ctx, r, ln.item.VariantID, -ln.item.Quantity, reason, "", now); err != nil {
				var ise *InsufficientStockError
				if errors.As(err, &ise) {
					ise.ProductName = ln.productName
				}
				return err
			}
		}

		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return internal(err)
		}

		out = toOrderOutput(created, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, translate(err)
	}

	if !out.Replayed {
		u.publish(ctx, model.NewOrderEvent(model.OrderEventCreated, created, items, u.clock.Now()))
	}
	return out, nil
}

// CancelOrder は注文をキャンセルし、全明細の在庫を戻す。
func (u *OrderUsecase) CancelOrder(ctx context.Context, actor Actor, orderID int64, reason string) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, validationf("invalid id")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}
	if len(reason) > maxCancelReasonLen {
		return OrderOutput{}, validationf("cancel_reason too long")
	}

	var (
		out      OrderOutput
		canceled model.Order
		items    []model.OrderItem
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("order %d", orderID)
		}
		if err != nil {
			return internal(err)
		}
		if !actor.canAccess(o.UserID) {
			return ErrForbidden
		}
		if !o.Status.IsCancellable() {
			return fmt.Errorf("%w: order is %s", ErrInvalidState, o.Status)
		}

		now := u.clock.Now()
		//同時キャンセルは片方だけ通る
		ok, err := r.Orders().CancelIf(ctx, orderID, model.CancellableStatuses(), repo.OrderCancellation{
			Reason:      reason,
			CancelledBy: actor.UserID,
			CancelledAt: now,
		})
		if err != nil {
			return internal(err)
		}
		if !ok {
			return fmt.Errorf("%w: order is no longer cancellable", ErrInvalidState)
		}

		items, err = r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internal(err)
		}
		restore := append([]model.OrderItem(nil), items...)
		sort.Slice(restore, func(i, j int) bool { return restore[i].VariantID < restore[j].VariantID })

		ledgerReason := fmt.Sprintf("cancel order #%d", orderID)
		for _, it := range restore {
			if _, _, err := applyLedger(ctx, r, it.VariantID, it.Quantity, ledgerReason, reason, now); err != nil {
				return err
			}
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   auditJSON(map[string]any{"status": o.Status}),
			AfterJSON:    auditJSON(map[string]any{"status": model.OrderStatusCanceled, "cancel_reason": reason}),
			CreatedAt:    now,
		}); err != nil {
			return internal(err)
		}

		canceled, err = r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return internal(err)
		}
		out = toOrderOutput(canceled, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, translate(err)
	}

	u.publish(ctx, model.NewOrderEvent(model.OrderEventCanceled, canceled, items, u.clock.Now()))
	return out, nil
}

// UpdateStatus は管理者による前進方向のステータス更新（在庫は触らない）。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID int64, status string) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if !actor.IsAdmin {
		return OrderOutput{}, ErrForbidden
	}
	if orderID <= 0 {
		return OrderOutput{}, validationf("invalid id")
	}
	next := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.IsValid() {
		return OrderOutput{}, validationf("invalid status %q", status)
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("order %d", orderID)
		}
		if err != nil {
			return internal(err)
		}

		// すでに同じなら何もしない
		if o.Status != next {
			if next == model.OrderStatusCanceled {
				return fmt.Errorf("%w: use the cancel operation", ErrInvalidState)
			}
			if !o.Status.CanAdvanceTo(next) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidState, o.Status, next)
			}

			ok, err := r.Orders().UpdateStatusIf(ctx, orderID, o.Status, next)
			if err != nil {
				return internal(err)
			}
			if !ok {
				return ErrConflict
			}

			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actor.UserID,
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   auditJSON(map[string]any{"status": o.Status}),
				AfterJSON:    auditJSON(map[string]any{"status": next}),
				CreatedAt:    u.clock.Now(),
			}); err != nil {
				return internal(err)
			}

			o, err = r.Orders().FindByID(ctx, orderID)
			if err != nil {
				return internal(err)
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internal(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, translate(err)
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, actor Actor) ([]OrderOutput, error) {
	if actor.UserID <= 0 {
		return nil, ErrUnauthorized
	}

	var outs []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, actor.UserID, 1, myOrdersLimit)
		if err != nil {
			return internal(err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return internal(err)
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return outs, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, validationf("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("order %d", orderID)
		}
		if err != nil {
			return internal(err)
		}
		//他人の注文は「存在しない扱い」にする
		if !actor.canAccess(o.UserID) {
			return notFoundf("order %d", orderID)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internal(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, translate(err)
	}
	return out, nil
}

// コミット後に送る。失敗しても注文は成立しているのでログだけ
func (u *OrderUsecase) publish(ctx context.Context, ev model.OrderEvent) {
	if err := u.publisher.PublishOrderEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish order event failed",
			"event_type", ev.Type,
			"order_id", ev.OrderID,
			"error", err,
		)
	}
}

type orderLine struct {
	item        model.CartItem
	productName string
	price       decimal.Decimal
	available   int64
}

// カート明細ごとに価格・商品名・在庫を集める（無いものは0/空）
func loadOrderLines(ctx context.Context, r repo.TxRepos, cartItems []model.CartItem) ([]orderLine, error) {
	lines := make([]orderLine, 0, len(cartItems))
	for _, ci := range cartItems {
		ln := orderLine{item: ci, price: decimal.Zero}

		v, err := r.Variants().FindByID(ctx, ci.VariantID)
		switch {
		case err == nil:
			ln.price = v.Price
		case !errors.Is(err, repo.ErrNotFound):
			return nil, internal(err)
		}

		p, err := r.Products().FindByID(ctx, ci.ProductID)
		switch {
		case err == nil:
			ln.productName = p.Name
		case !errors.Is(err, repo.ErrNotFound):
			return nil, internal(err)
		}

		s, err := r.Stocks().FindByVariantID(ctx, ci.VariantID)
		switch {
		case err == nil:
			ln.available = s.Quantity
		case !errors.Is(err, repo.ErrNotFound):
			return nil, internal(err)
		}

		lines = append(lines, ln)
	}
	return lines, nil
}

// 同じvariantが複数行にあっても合計で判定する
func precheckStock(lines []orderLine) error {
	requested := make(map[int64]int64, len(lines))
	for _, ln := range lines {
		requested[ln.item.VariantID] += ln.item.Quantity
	}
	for _, ln := range lines {
		if req := requested[ln.item.VariantID]; req > ln.available {
			return &InsufficientStockError{
				VariantID:   ln.item.VariantID,
				ProductName: ln.productName,
				Available:   ln.available,
				Requested:   req,
			}
		}
	}
	return nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductNameSnapshot,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Subtotal:    it.Price.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		CartID:          o.CartID,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		TotalPrice:      o.TotalPrice,
		CancelReason:    o.CancelReason,
		CancelledAt:     o.CancelledAt,
		CancelledBy:     o.CancelledBy,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           outItems,
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }
