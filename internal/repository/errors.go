package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	//ユニーク制約違反
	ErrDuplicate = errors.New("duplicate")

	//直列化失敗・デッドロックでリトライしきれなかった
	ErrConflict = errors.New("conflict")
)
