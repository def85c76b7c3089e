package remote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"contextvault/pkg/core"
	"contextvault/pkg/repository"
)

// Handler 把 Client 接口暴露为 HTTP/JSON 服务
// 它和 HTTPClient 说同一套协议，所以 cv-server + HTTPClient
// 的组合在协议层等价于直接持有 backend
type Handler struct {
	backend Client
	mux     *http.ServeMux
}

func NewHandler(backend Client) *Handler {
	h := &Handler{backend: backend, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/repositories", h.createRepository)
	h.mux.HandleFunc("GET /v1/repositories/{id}", h.getRepository)
	h.mux.HandleFunc("POST /v1/repositories/{id}/commits", h.pushCommits)
	h.mux.HandleFunc("POST /v1/repositories/{id}/objects", h.pushObjects)
	h.mux.HandleFunc("GET /v1/repositories/{id}/commits", h.fetchCommits)
	h.mux.HandleFunc("GET /v1/repositories/{id}/objects", h.fetchObjects)
	h.mux.HandleFunc("GET /v1/repositories/{id}/branches", h.fetchBranches)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) createRepository(w http.ResponseWriter, r *http.Request) {
	var repo repository.Repository
	if err := json.NewDecoder(r.Body).Decode(&repo); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.backend.CreateRepository(r.Context(), &repo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handler) getRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := h.backend.GetRepository(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, repo)
}

func (h *Handler) pushCommits(w http.ResponseWriter, r *http.Request) {
	var commits []*core.ContextCommit
	if err := json.NewDecoder(r.Body).Decode(&commits); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.backend.PushCommits(r.Context(), r.PathValue("id"), commits); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pushObjects(w http.ResponseWriter, r *http.Request) {
	var objects []*core.ContentObject
	if err := json.NewDecoder(r.Body).Decode(&objects); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.backend.PushObjects(r.Context(), r.PathValue("id"), objects); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fetchCommits(w http.ResponseWriter, r *http.Request) {
	commits, err := h.backend.FetchCommits(r.Context(), r.PathValue("id"), parseSince(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, commits)
}

func (h *Handler) fetchObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.backend.FetchObjects(r.Context(), r.PathValue("id"), parseSince(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, objects)
}

func (h *Handler) fetchBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.backend.FetchBranches(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, branches)
}

func parseSince(r *http.Request) int64 {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0
	}
	since, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return since
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// 保证空列表编码为 []，客户端不用处理 null
	if v == nil {
		w.Write([]byte("[]"))
		return
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrRepoNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
