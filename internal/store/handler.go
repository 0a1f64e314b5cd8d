// Package store exposes the protected resource APIs the storefront calls.
// The payloads are fixtures; catalog and payment logic live elsewhere. What
// matters here is that every route sits behind the capability gates.
package store

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/gate"
	"github.com/nayea-id/nayea/internal/platform/httpx"
	"github.com/nayea-id/nayea/internal/session"
)

// Handler serves the /api resource routes.
type Handler struct {
	logger *slog.Logger
	gates  gate.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, gates gate.Middleware) *Handler {
	return &Handler{logger: logger, gates: gates}
}

// MountRoutes registers the resource routes. Each verb carries exactly the
// gate the capability matrix prescribes; the route guard has already ensured
// a session exists for these prefixes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.With(h.gates.Require(authz.ResourceProducts, authz.ActionRead)).Get("/", h.listProducts)
		r.With(h.gates.Require(authz.ResourceProducts, authz.ActionCreate)).Post("/", h.acceptWrite)
		r.With(h.gates.Require(authz.ResourceProducts, authz.ActionUpdate)).Put("/{id}", h.acceptWrite)
		r.With(h.gates.Require(authz.ResourceProducts, authz.ActionDelete)).Delete("/{id}", h.acceptWrite)
	})
	r.Route("/orders", func(r chi.Router) {
		r.With(h.gates.Require(authz.ResourceOrders, authz.ActionRead)).Get("/", h.listOrders)
		r.With(h.gates.Require(authz.ResourceOrders, authz.ActionCreate)).Post("/", h.acceptWrite)
		r.With(h.gates.Require(authz.ResourceOrders, authz.ActionUpdate)).Put("/{id}", h.acceptWrite)
		r.With(h.gates.Require(authz.ResourceOrders, authz.ActionDelete)).Delete("/{id}", h.acceptWrite)
	})
	r.Route("/reports", func(r chi.Router) {
		r.With(h.gates.RequireRead(authz.ResourceReports)).Get("/", h.listReports)
	})
	r.Route("/support", func(r chi.Router) {
		r.With(h.gates.RequireRead(authz.ResourceSupport)).Get("/", h.listTickets)
		r.With(h.gates.Require(authz.ResourceSupport, authz.ActionCreate)).Post("/", h.acceptWrite)
	})
}

type product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, map[string]any{"products": []product{
		{ID: "p-1", Name: "Gamis Basic Emerald", Price: 289000},
		{ID: "p-2", Name: "Hijab Instan Voal", Price: 89000},
	}})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, map[string]any{"orders": []order{
		{ID: "o-1001", Status: "shipped", Total: 378000},
		{ID: "o-1002", Status: "pending", Total: 89000},
	}})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, map[string]any{"reports": []string{"sales-weekly", "inventory-snapshot"}})
}

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, map[string]any{"tickets": []string{}})
}

// acceptWrite acknowledges a gated mutation without persisting anything.
func (h *Handler) acceptWrite(w http.ResponseWriter, r *http.Request) {
	principal := session.PrincipalFromContext(r.Context())
	role := ""
	if principal != nil {
		role = principal.Role.String()
	}
	h.logger.Info("accepted write",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.String("role", role))
	httpx.OK(w, map[string]any{"accepted": true})
}
