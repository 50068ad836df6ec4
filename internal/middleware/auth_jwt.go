package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxClaimsKey   = "token_claims" // TokenClaims
	CtxUserRoleKey = "user_role"    // string (LoadIdentityがDBの値で入れる)
	CtxActorKey    = "actor"        // usecase.Actor
)

// アクセストークンから読んだ値。まだDBとは照合していない。
type TokenClaims struct {
	UserID       int64
	Role         string
	TokenVersion int
}

var errMalformedClaims = errors.New("malformed token claims")

// AuthJWT はBearerトークンを検証してTokenClaimsをcontextに入れる。
// 利用者の読み込みと権限の確定はLoadIdentityで行う。
func AuthJWT(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}
			claims, err := parseAccessToken(raw, key)
			if err != nil {
				return unauthorized(c)
			}
			c.Set(CtxClaimsKey, claims)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HS256のみ受け付ける。sub/role/tvが揃っていなければエラー。
func parseAccessToken(raw string, key []byte) (TokenClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return TokenClaims{}, err
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TokenClaims{}, errMalformedClaims
	}

	sub, err := claimInt(mc["sub"], 64)
	if err != nil || sub <= 0 {
		return TokenClaims{}, errMalformedClaims
	}
	role, _ := mc["role"].(string)
	if role == "" {
		return TokenClaims{}, errMalformedClaims
	}
	tv, err := claimInt(mc["tv"], 32)
	if err != nil || tv < 0 {
		return TokenClaims{}, errMalformedClaims
	}
	return TokenClaims{UserID: sub, Role: role, TokenVersion: int(tv)}, nil
}

// JSONの数値はfloat64で来る。文字列で来る発行元もある。
func claimInt(v interface{}, bitSize int) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, bitSize)
	default:
		return 0, errMalformedClaims
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}
