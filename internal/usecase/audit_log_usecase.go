package usecase

import (
	"context"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditLogUsecase struct {
	audits repo.AuditLogRepository
}

func NewAuditLogUsecase(audits repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{audits: audits}
}

// 管理者のみ
func (u *AuditLogUsecase) List(ctx context.Context, actor Actor, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if actor.UserID <= 0 {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if f.Limit == 0 {
		f.Limit = defaultAuditLimit
	}
	if f.Limit < 1 || f.Limit > maxAuditLimit {
		return nil, validationf("invalid limit")
	}
	if f.Offset < 0 {
		return nil, validationf("invalid offset")
	}

	logs, err := u.audits.List(ctx, f)
	if err != nil {
		return nil, translate(err)
	}
	return logs, nil
}
