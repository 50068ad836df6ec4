package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"
)

const (
	defaultAdjustReason = "manual adjustment"
	defaultUpdateReason = "manual update"
	maxReasonLen        = 255

	defaultHistoryLimit = 100
	maxHistoryLimit     = 500

	// 1回の増減・上書きで扱える数量の上限。quantity + delta がint64を越えないようにする。
	MaxStockMagnitude int64 = 1_000_000_000
)

type StockUsecase struct {
	tx           repo.TransactionManager
	clock        Clock
	lowThreshold int64
}

func NewStockUsecase(tx repo.TransactionManager, lowThreshold int64) *StockUsecase {
	return &StockUsecase{tx: tx, clock: systemClock{}, lowThreshold: lowThreshold}
}

// 在庫の現在値と案内メッセージ
type StockResult struct {
	Stock   model.Stock         `json:"stock"`
	History *model.StockHistory `json:"history,omitempty"`
	Message string              `json:"message"`
}

// 初期数量＋履歴合計と現在数量の照合結果
type LedgerCheck struct {
	VariantID       int64 `json:"variant_id"`
	StockID         int64 `json:"stock_id"`
	Quantity        int64 `json:"quantity"`
	InitialQuantity int64 `json:"initial_quantity"`
	HistorySum      int64 `json:"history_sum"`
	Consistent      bool  `json:"consistent"`
}

// ApplyDelta は在庫をdeltaだけ増減し、履歴を1件追記する。
func (u *StockUsecase) ApplyDelta(ctx context.Context, variantID int64, delta int64, reason string, note string) (StockResult, error) {
	if variantID <= 0 {
		return StockResult{}, validationf("invalid variant_id")
	}
	if delta > MaxStockMagnitude || delta < -MaxStockMagnitude {
		return StockResult{}, validationf("quantity_change must be within ±%d", MaxStockMagnitude)
	}
	reason, err := normalizeReason(reason, defaultAdjustReason)
	if err != nil {
		return StockResult{}, err
	}

	var out StockResult
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		stock, h, err := applyLedger(ctx, r, variantID, delta, reason, note, u.clock.Now())
		if err != nil {
			return err
		}
		out = u.result(stock, &h)
		return nil
	})
	if err != nil {
		return StockResult{}, translate(err)
	}
	return out, nil
}

// SetAbsolute は管理者による上書き。差分を履歴に残す。
func (u *StockUsecase) SetAbsolute(ctx context.Context, actorID int64, variantID int64, newQuantity int64, reason string) (StockResult, error) {
	if actorID <= 0 {
		return StockResult{}, ErrUnauthorized
	}
	if variantID <= 0 {
		return StockResult{}, validationf("invalid variant_id")
	}
	if newQuantity < 0 {
		return StockResult{}, validationf("quantity must be >= 0")
	}
	if newQuantity > MaxStockMagnitude {
		return StockResult{}, validationf("quantity must be <= %d", MaxStockMagnitude)
	}
	reason, err := normalizeReason(reason, defaultUpdateReason)
	if err != nil {
		return StockResult{}, err
	}

	var out StockResult
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Stocks().FindByVariantID(ctx, variantID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("stock for variant %d", variantID)
		}
		if err != nil {
			return internal(err)
		}

		now := u.clock.Now()
		stock, h, err := applyLedger(ctx, r, variantID, newQuantity-before.Quantity, reason, "", now)
		if err != nil {
			return err
		}
		//読んでから更新までに他で変わっていたらやり直してもらう
		if stock.Quantity != newQuantity {
			return ErrConflict
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceStock,
			ResourceID:   stock.ID,
			BeforeJSON:   auditJSON(map[string]any{"quantity": before.Quantity}),
			AfterJSON:    auditJSON(map[string]any{"quantity": stock.Quantity, "reason": reason}),
			CreatedAt:    now,
		}); err != nil {
			return internal(err)
		}

		out = u.result(stock, &h)
		return nil
	})
	if err != nil {
		return StockResult{}, translate(err)
	}
	return out, nil
}

func (u *StockUsecase) GetQuantity(ctx context.Context, variantID int64) (StockResult, error) {
	if variantID <= 0 {
		return StockResult{}, validationf("invalid variant_id")
	}

	var out StockResult
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		stock, err := findStock(ctx, r, variantID)
		if err != nil {
			return err
		}
		out = u.result(stock, nil)
		return nil
	})
	if err != nil {
		return StockResult{}, translate(err)
	}
	return out, nil
}

// 新しい順
func (u *StockUsecase) History(ctx context.Context, variantID int64) ([]model.StockHistory, error) {
	if variantID <= 0 {
		return nil, validationf("invalid variant_id")
	}

	var out []model.StockHistory
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		stock, err := findStock(ctx, r, variantID)
		if err != nil {
			return err
		}
		out, err = r.Stocks().ListHistory(ctx, stock.ID)
		if err != nil {
			return internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// AllHistory は全在庫の履歴を新しい順に返す。limit 0 は既定値。
func (u *StockUsecase) AllHistory(ctx context.Context, limit int, offset int) ([]model.StockHistory, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit < 1 || limit > maxHistoryLimit {
		return nil, validationf("invalid limit")
	}
	if offset < 0 {
		return nil, validationf("invalid offset")
	}

	var out []model.StockHistory
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.Stocks().ListAllHistory(ctx, limit, offset)
		if err != nil {
			return internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (u *StockUsecase) HistoryEntry(ctx context.Context, historyID int64) (model.StockHistory, error) {
	if historyID <= 0 {
		return model.StockHistory{}, validationf("invalid id")
	}

	var out model.StockHistory
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		h, err := r.Stocks().FindHistoryByID(ctx, historyID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("stock history %d", historyID)
		}
		if err != nil {
			return internal(err)
		}
		out = h
		return nil
	})
	if err != nil {
		return model.StockHistory{}, translate(err)
	}
	return out, nil
}

// Verify は InitialQuantity + 履歴合計 == Quantity を確認する。
func (u *StockUsecase) Verify(ctx context.Context, variantID int64) (LedgerCheck, error) {
	if variantID <= 0 {
		return LedgerCheck{}, validationf("invalid variant_id")
	}

	var out LedgerCheck
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		stock, err := findStock(ctx, r, variantID)
		if err != nil {
			return err
		}
		sum, err := r.Stocks().SumHistory(ctx, stock.ID)
		if err != nil {
			return internal(err)
		}
		out = LedgerCheck{
			VariantID:       variantID,
			StockID:         stock.ID,
			Quantity:        stock.Quantity,
			InitialQuantity: stock.InitialQuantity,
			HistorySum:      sum,
			Consistent:      stock.InitialQuantity+sum == stock.Quantity,
		}
		return nil
	})
	if err != nil {
		return LedgerCheck{}, translate(err)
	}
	return out, nil
}

func (u *StockUsecase) result(stock model.Stock, h *model.StockHistory) StockResult {
	return StockResult{
		Stock:   stock,
		History: h,
		Message: model.StockAdvisory(stock.Quantity, u.lowThreshold),
	}
}

// applyLedger は在庫の増減と履歴追記をトランザクション内で行う。
// 注文作成/キャンセルからも同じ手順で呼ぶ。
func applyLedger(ctx context.Context, r repo.TxRepos, variantID int64, delta int64, reason string, note string, now time.Time) (model.Stock, model.StockHistory, error) {
	stock, err := findStock(ctx, r, variantID)
	if err != nil {
		return model.Stock{}, model.StockHistory{}, err
	}

	//条件付きUPDATEが最終判定
	ok, err := r.Stocks().AddQuantityIfNonNegative(ctx, variantID, delta, now)
	if err != nil {
		return model.Stock{}, model.StockHistory{}, internal(err)
	}
	if !ok {
		available := stock.Quantity
		if latest, err := r.Stocks().FindByVariantID(ctx, variantID); err == nil {
			available = latest.Quantity
		}
		return model.Stock{}, model.StockHistory{}, &InsufficientStockError{
			VariantID: variantID,
			Available: available,
			Requested: -delta,
		}
	}

	stock, err = r.Stocks().FindByVariantID(ctx, variantID)
	if err != nil {
		return model.Stock{}, model.StockHistory{}, internal(err)
	}

	h, err := r.Stocks().CreateHistory(ctx, model.StockHistory{
		StockID:        stock.ID,
		QuantityChange: delta,
		Reason:         reason,
		Note:           note,
		CreatedAt:      now,
	})
	if err != nil {
		return model.Stock{}, model.StockHistory{}, internal(err)
	}
	return stock, h, nil
}

func findStock(ctx context.Context, r repo.TxRepos, variantID int64) (model.Stock, error) {
	stock, err := r.Stocks().FindByVariantID(ctx, variantID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Stock{}, notFoundf("stock for variant %d", variantID)
	}
	if err != nil {
		return model.Stock{}, internal(err)
	}
	return stock, nil
}

func normalizeReason(reason string, def string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return def, nil
	}
	if len(reason) > maxReasonLen {
		return "", validationf("reason too long")
	}
	return reason, nil
}

func auditJSON(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
