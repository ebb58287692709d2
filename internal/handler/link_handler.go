// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/stockwatch/internal/link"
	"github.com/hitoshi/stockwatch/internal/middleware"
	"github.com/hitoshi/stockwatch/internal/model"
)

// LinkServiceInterface はリンクハンドラーが必要とするサービスインターフェース。
type LinkServiceInterface interface {
	// AddBatch は改行区切りの入力を1行ずつ登録する。
	AddBatch(ctx context.Context, input string) []link.AddResult
	// RemoveByID は識別子でリンクを削除する。
	RemoveByID(id string) (*model.MonitoredLink, error)
	// RemoveAll は全リンクを削除し、削除件数を返す。
	RemoveAll() int
	// List は登録順の全リンクを返す。
	List() []*model.MonitoredLink
}

// LinkHandler は監視リンク管理のHTTPハンドラー。
type LinkHandler struct {
	service LinkServiceInterface
}

// NewLinkHandler はLinkHandlerを生成する。
func NewLinkHandler(service LinkServiceInterface) *LinkHandler {
	return &LinkHandler{service: service}
}

// addLinksRequest はリンク登録リクエストのボディ。
// inputはURL単体、"URL|名前"、またはそれらの改行区切り。
type addLinksRequest struct {
	Input string `json:"input"`
}

// linkResponse は監視リンクのAPIレスポンス。
type linkResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	LastCheck    *time.Time `json:"last_check"`
	LastStatus   *string    `json:"last_status"`
	LastPrice    *string    `json:"last_price"`
	InStock      *bool      `json:"in_stock"`
	ProductTitle string     `json:"product_title"`
	AddedDate    time.Time  `json:"added_date"`
}

// addResultResponse は1行分の登録結果。
type addResultResponse struct {
	Input string        `json:"input"`
	Added bool          `json:"added"`
	Error string        `json:"error,omitempty"`
	Link  *linkResponse `json:"link,omitempty"`
}

// toLinkResponse はモデルをAPIレスポンスに変換する。
func toLinkResponse(l *model.MonitoredLink) *linkResponse {
	var status *string
	if l.LastStatus != nil {
		s := string(*l.LastStatus)
		status = &s
	}

	return &linkResponse{
		ID:           l.ID(),
		Name:         l.Name,
		URL:          l.URL,
		LastCheck:    l.LastCheck,
		LastStatus:   status,
		LastPrice:    l.LastPrice,
		InStock:      l.InStock,
		ProductTitle: l.ProductTitle,
		AddedDate:    l.AddedDate,
	}
}

// AddLinks はリンク登録を処理する。1リクエストで複数行を受け付ける。
// POST /api/links
func (h *LinkHandler) AddLinks(w http.ResponseWriter, r *http.Request) {
	var req addLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			"INVALID_REQUEST", "リクエストボディの解析に失敗しました。")
		return
	}

	results := h.service.AddBatch(r.Context(), req.Input)
	if len(results) == 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			"INVALID_REQUEST", "登録対象の行がありません。")
		return
	}

	resp := make([]addResultResponse, 0, len(results))
	added := 0
	for _, res := range results {
		item := addResultResponse{Input: res.Input}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Added = true
			item.Link = toLinkResponse(res.Link)
			added++
		}
		resp = append(resp, item)
	}

	status := http.StatusCreated
	if added == 0 {
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"results": resp})
}

// ListLinks は登録順のリンク一覧を返す。
// GET /api/links
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links := h.service.List()

	resp := make([]*linkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, toLinkResponse(l))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"links": resp})
}

// RemoveLink は識別子指定でリンクを削除する。
// DELETE /api/links/{id}
func (h *LinkHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.service.RemoveByID(id)
	if err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			middleware.WriteErrorResponse(w, http.StatusNotFound,
				"LINK_NOT_FOUND", "指定されたリンクは登録されていません。")
			return
		}
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"removed": toLinkResponse(removed)})
}

// RemoveAllLinks は全リンクを削除する。
// DELETE /api/links
func (h *LinkHandler) RemoveAllLinks(w http.ResponseWriter, r *http.Request) {
	count := h.service.RemoveAll()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"removed_count": count})
}
