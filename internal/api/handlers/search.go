package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mindcove/mindex/internal/api"
	"github.com/mindcove/mindex/internal/api/middleware"
	"github.com/mindcove/mindex/internal/domain"
	"github.com/mindcove/mindex/internal/pagination"
)

type SearchService interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions, userID string) (*domain.SearchResponse, error)
}

type HistoryService interface {
	UpdateAdoptionStatus(ctx context.Context, userID, historyID string, status domain.AdoptionStatus) error
	ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*domain.SearchHistory, string, bool, error)
}

type SearchHandler struct {
	svc     SearchService
	history HistoryService
}

func NewSearchHandler(svc SearchService, history HistoryService) *SearchHandler {
	return &SearchHandler{svc: svc, history: history}
}

type SearchRequest struct {
	Query         string   `json:"query"`
	TopK          int      `json:"top_k"`
	MinScore      *float64 `json:"min_score"`
	DatasourceIDs []string `json:"datasource_ids"`
	ContentTypes  []string `json:"content_types"`
	Role          string   `json:"role"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := domain.SearchOptions{
		TopK:          req.TopK,
		MinScore:      req.MinScore,
		DatasourceIDs: req.DatasourceIDs,
		ContentTypes:  req.ContentTypes,
		Role:          domain.ParseRole(req.Role),
	}

	userID := middleware.GetUserID(r.Context())

	resp, err := h.svc.Search(r.Context(), req.Query, opts, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

type FeedbackRequest struct {
	HistoryID      string `json:"history_id"`
	AdoptionStatus string `json:"adoption_status"`
}

func (h *SearchHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.HistoryID == "" {
		api.Error(w, http.StatusBadRequest, "history_id is required")
		return
	}

	status := domain.AdoptionStatus(req.AdoptionStatus)
	if !domain.IsValidAdoptionStatus(status) {
		api.Error(w, http.StatusBadRequest, "invalid adoption status")
		return
	}

	if err := h.history.UpdateAdoptionStatus(r.Context(), userID, req.HistoryID, status); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "recorded"})
}

type HistoryListResponse struct {
	Items   []*domain.SearchHistory `json:"items"`
	Cursor  string                  `json:"cursor,omitempty"`
	HasMore bool                    `json:"has_more"`
}

func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	items, nextCursor, hasMore, err := h.history.ListByUser(r.Context(), userID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, HistoryListResponse{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	})
}
