package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/logging"
	"github.com/NghiaPh49487/Back-End-DATN/internal/repository"
	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/labstack/echo/v4"
)

// LoadIdentity はAuthJWTの後に置く。
// DBのユーザーを読み、tvが一致すれば操作者(Actor)をcontextに入れる。
// timeout > 0 のとき、ユーザー読み込みをその時間で打ち切る。
func LoadIdentity(userRepo repository.UserRepository, timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(CtxClaimsKey).(TokenClaims)
			if !ok || claims.UserID <= 0 {
				return unauthorized(c)
			}

			ctx := c.Request().Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			user, err := userRepo.FindByID(ctx, claims.UserID)
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				logging.FromContext(ctx).Warn("user lookup timed out", "user_id", claims.UserID)
				return c.JSON(http.StatusServiceUnavailable, errorJSON("timeout"))
			case errors.Is(err, repository.ErrNotFound):
				return unauthorized(c)
			case err != nil:
				logging.FromContext(ctx).Error("user lookup failed", "user_id", claims.UserID, "err", err)
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}
			if !user.IsActive {
				return unauthorized(c)
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != claims.TokenVersion {
				return unauthorized(c)
			}

			//権限はDBの値を正とする
			c.Set(CtxUserRoleKey, string(user.Role))
			c.Set(CtxActorKey, usecase.Actor{
				UserID:   user.ID,
				Username: user.Username,
				Address:  user.Address,
				IsAdmin:  user.IsAdmin(),
			})

			return next(c)
		}
	}
}

// ActorFrom はLoadIdentityが入れた操作者を返す
func ActorFrom(c echo.Context) (usecase.Actor, bool) {
	a, ok := c.Get(CtxActorKey).(usecase.Actor)
	if !ok || a.UserID <= 0 {
		return usecase.Actor{}, false
	}
	return a, true
}
