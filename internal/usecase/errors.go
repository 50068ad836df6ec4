package usecase

import (
	"context"
	"errors"
	"fmt"

	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid state")
	ErrConflict          = errors.New("conflict")
	//タイムアウト（リトライ可能）
	ErrTimeout  = errors.New("timeout")
	ErrInternal = errors.New("internal error")
)

// 在庫不足の詳細
type InsufficientStockError struct {
	VariantID   int64
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for variant %d: available %d, requested %d", e.VariantID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// DBエラー。元のエラーもErrorsで辿れるようにする（リトライ判定用）
func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// usecase以外から来たエラーを分類に寄せる
// すでに分類済みのものはそのまま返す。
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isClassified(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, repo.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return internal(err)
	}
}

func isClassified(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrEmptyCart,
		ErrInsufficientStock, ErrInvalidState, ErrConflict, ErrTimeout,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	// ErrInternalでもTx側がタイムアウト/競合を見抜けるようにもう一段見る
	if errors.Is(err, ErrInternal) {
		return !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, repo.ErrConflict)
	}
	return false
}
