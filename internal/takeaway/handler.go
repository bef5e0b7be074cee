package takeaway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tavolaclub/tavola/internal/reservations"
)

const MaxBodyBytes = 1 << 20

const orderEventSource = "takeaway"

type Handler struct {
	orderRepo OrderRepo
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
	publisher events.Publisher
}

type HandlerDeps struct {
	OrderRepo OrderRepo
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		orderRepo: hd.OrderRepo,
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		publisher: hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/takeaway", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{orderID}", h.GetOrder)
		r.Delete("/{orderID}", h.DeleteOrder)
	})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeCreatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateOrderCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	items := make([]Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, Item{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}

	order := NewOrder()
	order.FullName = req.FullName
	order.Phone = reservations.NormalizePhone(req.Phone)
	order.Address = req.Address
	order.Items = items
	order.Bill = ComputeBill(items)
	order.BeforeCreate()

	if err := h.orderRepo.Create(ctx, order); err != nil {
		log.Error("cannot create takeaway order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not place takeaway order")
		return
	}

	h.publishOrderEvent(ctx, order, EventOrderPlaced)

	links := aqm.RESTfulLinksFor(order)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading takeaway order", "error", err, "order_id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve takeaway order")
		return
	}

	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Takeaway order not found")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orders, err := h.orderRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving takeaway orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve takeaway orders")
		return
	}

	aqm.RespondCollection(w, orders, "takeaway-order")
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading takeaway order", "error", err, "order_id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve takeaway order")
		return
	}

	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Takeaway order not found")
		return
	}

	if err := h.orderRepo.Delete(ctx, id); err != nil {
		log.Error("cannot delete takeaway order", "error", err, "order_id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete takeaway order")
		return
	}

	h.publishOrderEvent(ctx, order, EventOrderCancelled)

	aqm.RespondSuccess(w, map[string]string{"order_id": id.String(), "status": "cancelled"})
}

func (h *Handler) publishOrderEvent(ctx context.Context, order *Order, eventType string) {
	if h.publisher == nil || order == nil {
		return
	}

	event := OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID.String(),
		Total:      order.Bill.Total,
		Source:     orderEventSource,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal takeaway order event", "error", err, "order_id", order.ID.String())
		return
	}

	if err := h.publisher.Publish(ctx, OrderTopic, payload); err != nil {
		h.logger.Error("cannot publish takeaway order event", "error", err, "order_id", order.ID.String())
	}
}

// Helper methods

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) parseOrderIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "orderID")
	if idStr == "" {
		log.Debug("missing orderID parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing orderID parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid orderID parameter", "orderID", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid orderID parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (OrderCreateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return OrderCreateRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return OrderCreateRequest{}, false
	}

	var req OrderCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return OrderCreateRequest{}, false
	}

	return req, true
}
