package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/stockwatch/internal/middleware"
	"github.com/hitoshi/stockwatch/internal/model"
)

// CheckRunner はオンデマンドのチェックサイクルを実行するインターフェース。
type CheckRunner interface {
	Run(ctx context.Context) (*model.CheckReport, error)
}

// CheckHandler は手動チェック実行のHTTPハンドラー。
type CheckHandler struct {
	runner CheckRunner
}

// NewCheckHandler はCheckHandlerを生成する。
func NewCheckHandler(runner CheckRunner) *CheckHandler {
	return &CheckHandler{runner: runner}
}

// RunCheck は全リンクのチェックサイクルを即時実行し、結果を返す。
// リンク間の待機を含むため、登録数に比例して応答に時間がかかる。
// POST /api/check
func (h *CheckHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(r.Context())
	if err != nil {
		// キャンセルや途中失敗でも得られた分は返す
		if report == nil {
			middleware.WriteInternalServerError(w)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
