package menu

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	itemRepo MenuItemRepo
	logger   aqm.Logger
	config   *aqm.Config
	tlm      *telemetry.HTTP
}

type HandlerDeps struct {
	MenuItemRepo MenuItemRepo
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		itemRepo: hd.MenuItemRepo,
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/menu-items", func(r chi.Router) {
		r.Post("/", h.CreateMenuItem)
		r.Get("/", h.ListMenuItems)
		r.Get("/{id}", h.GetMenuItem)
		r.Patch("/{id}", h.UpdateMenuItem)
		r.Delete("/{id}", h.DeleteMenuItem)
	})
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeCreatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateMenuItemCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	item := NewMenuItem()
	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.Category = req.Category
	item.BeforeCreate()

	if err := h.itemRepo.Create(ctx, item); err != nil {
		log.Error("cannot create menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create menu item")
		return
	}

	links := aqm.RESTfulLinksFor(item)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, item, links...)
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, err := h.itemRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading menu item", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu item")
		return
	}

	if item == nil {
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	links := aqm.RESTfulLinksFor(item)
	aqm.RespondSuccess(w, item, links...)
}

func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenuItems")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	category := r.URL.Query().Get("category")

	var items []*MenuItem
	var err error

	if category != "" {
		items, err = h.itemRepo.ListByCategory(ctx, category)
	} else {
		items, err = h.itemRepo.List(ctx)
	}

	if err != nil {
		log.Error("error retrieving menu items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu items")
		return
	}

	aqm.RespondCollection(w, items, "menu-item")
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeUpdatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateMenuItemUpdate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	item, err := h.itemRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading menu item", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu item")
		return
	}

	if item == nil {
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.BeforeUpdate()

	if err := h.itemRepo.Save(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		log.Error("cannot update menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}

	links := aqm.RESTfulLinksFor(item)
	aqm.RespondSuccess(w, item, links...)
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.itemRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		log.Error("cannot delete menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (MenuItemCreateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return MenuItemCreateRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return MenuItemCreateRequest{}, false
	}

	var req MenuItemCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return MenuItemCreateRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeUpdatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (MenuItemUpdateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return MenuItemUpdateRequest{}, false
	}

	var req MenuItemUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return MenuItemUpdateRequest{}, false
	}

	return req, true
}
