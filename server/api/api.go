// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api registers the shortener's HTTP routes.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/bitmap/qr"
	"github.com/plus3/blockfall/errs"
	"github.com/plus3/blockfall/server/httperr"
	"github.com/plus3/blockfall/server/middleware"
	"github.com/plus3/blockfall/server/netsvr"
	"github.com/plus3/blockfall/server/shortener"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	svc *shortener.Service
	qr  bitmap.Source
	log *slog.Logger
}

// NewHandler serves svc. QR patterns encode each code's short URL.
func NewHandler(svc *shortener.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, qr: qr.NewSource(svc.QRContent), log: log}
}

// RegisterRoutes installs the middleware stack and every route on r.
func RegisterRoutes(r netsvr.Router, h *Handler) {
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(h.log))
	r.Use(middleware.Recover)
	r.Use(middleware.Compression)

	r.Post("/shorten", h.Shorten)
	r.Group("/api", func(api netsvr.Router) {
		api.Get("/stats", h.Stats)
		api.Get("/urls", h.List)
		api.Delete("/urls/{code}", h.Delete)
		api.Get("/qr/{code}", h.QR)
	})
	r.Get("/{code}", h.Redirect)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httperr.Errs(w, err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.JSON(w, err)
}

func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.JSON(w, errs.Warnf("invalid json: %v", err))
		return
	}

	e, err := h.svc.Shorten(r.Context(), req.URL)
	if err != nil {
		h.fail(w, "shorten", err)
		return
	}
	writeJSON(w, struct {
		ShortURL  string `json:"short_url"`
		ShortCode string `json:"short_code"`
	}{h.svc.ShortURL(e.ShortCode), e.ShortCode})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		h.fail(w, "stats", err)
		return
	}
	writeJSON(w, st)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	type item struct {
		shortener.Entry
		ShortURL string `json:"short_url"`
	}
	out := make([]item, len(all))
	for i, e := range all {
		out[i] = item{Entry: e, ShortURL: h.svc.ShortURL(e.ShortCode)}
	}
	writeJSON(w, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.fail(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QR returns the code's QR pattern as {matrix, width, height}.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	bm, err := h.qr.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, "qr", err)
		return
	}
	writeJSON(w, bm)
}

func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.Follow(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httperr.Log(h.log, "redirect", err)
		if httperr.StatusCode(err) == http.StatusNotFound {
			http.Error(w, "URL not found", http.StatusNotFound)
			return
		}
		httperr.Errs(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
