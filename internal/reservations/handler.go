package reservations

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

// SessionSource resolves the authenticated session for a request, if any.
// A nil source means every booking runs anonymously.
type SessionSource interface {
	FromRequest(r *http.Request) (Session, bool)
}

type Handler struct {
	tableRepo TableRepo
	svc       *BookingService
	sessions  SessionSource
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
}

type HandlerDeps struct {
	TableRepo TableRepo
	Service   *BookingService
	Sessions  SessionSource
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		tableRepo: hd.TableRepo,
		svc:       hd.Service,
		sessions:  hd.Sessions,
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.ListTables)
	r.Get("/reserved-tables", h.ReservedTables)
	r.Post("/reserve", h.CreateReservation)
	r.Put("/update-reservation", h.UpdateReservation)

	r.Route("/reservation", func(r chi.Router) {
		r.Get("/{orderID}", h.GetReservation)
		r.Delete("/{orderID}", h.CancelReservation)
	})
}

// Table Catalog

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	tables, err := h.tableRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving tables", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	aqm.RespondCollection(w, tables, "table")
}

// Availability Resolver

func (h *Handler) ReservedTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ReservedTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	timeSlot := r.URL.Query().Get("time")
	if date == "" || timeSlot == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Date and time are required")
		return
	}
	if !ValidTimeSlot(timeSlot) {
		aqm.RespondError(w, http.StatusBadRequest, "Time slot is not a recognized service period")
		return
	}

	// The order under edit, so its own tables are not rendered as taken.
	exclude := uuid.Nil
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid exclude parameter")
			return
		}
		exclude = parsed
	}

	taken, err := h.svc.ReservedTables(ctx, date, timeSlot, exclude)
	if err != nil {
		log.Error("error resolving reserved tables", "error", err, "date", date, "time_slot", timeSlot)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve reserved tables")
		return
	}

	if taken == nil {
		taken = []string{}
	}
	aqm.RespondSuccess(w, taken)
}

// Booking Workflow

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeCreatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateReservationCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, validationMessage(validationErrors))
		return
	}

	wf := NewWorkflow(h.svc, h.session(r))
	if err := wf.SelectDateTime(ctx, req.Date, req.Time, req.Guests); err != nil {
		h.respondWorkflowError(w, log, err, "cannot select date and time")
		return
	}
	if err := wf.ChooseTables(req.Tables); err != nil {
		h.respondWorkflowError(w, log, err, "cannot select tables")
		return
	}
	if err := wf.EnterDetails(CustomerDetails{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Agreed:   req.Agree,
	}); err != nil {
		h.respondWorkflowError(w, log, err, "cannot capture customer details")
		return
	}
	if err := wf.Submit(ctx); err != nil {
		h.respondWorkflowError(w, log, err, "cannot create reservation")
		return
	}

	reservation := wf.Result()
	links := aqm.RESTfulLinksFor(reservation)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeUpdatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateReservationUpdate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, validationMessage(validationErrors))
		return
	}

	existing, err := h.svc.Get(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
			return
		}
		log.Error("error loading reservation", "error", err, "order_id", req.OrderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load reservation")
		return
	}

	// An update keeps the order id but may move the booking to another
	// slot, so the edit workflow re-resolves availability for the
	// requested slot rather than the stored one.
	existing.Date = req.Date
	existing.TimeSlot = req.Time
	existing.GuestCount = req.Guests

	wf, err := NewEditWorkflow(ctx, h.svc, h.session(r), existing)
	if err != nil {
		log.Error("cannot start edit workflow", "error", err, "order_id", req.OrderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update reservation")
		return
	}

	if err := wf.ChooseTables(req.Tables); err != nil {
		h.respondWorkflowError(w, log, err, "cannot select tables")
		return
	}
	if err := wf.EnterDetails(CustomerDetails{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Agreed:   req.Agree,
	}); err != nil {
		h.respondWorkflowError(w, log, err, "cannot capture customer details")
		return
	}
	if err := wf.Submit(ctx); err != nil {
		h.respondWorkflowError(w, log, err, "cannot update reservation")
		return
	}

	reservation := wf.Result()
	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	reservation, err := h.svc.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
			return
		}
		log.Error("error loading reservation", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load reservation")
		return
	}

	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.svc.Cancel(ctx, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
			return
		}
		log.Error("cannot cancel reservation", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not cancel reservation")
		return
	}

	aqm.RespondSuccess(w, map[string]string{"order_id": orderID.String(), "status": "cancelled"})
}

// Helper methods

func (h *Handler) session(r *http.Request) Session {
	if h.sessions == nil {
		return Session{}
	}
	session, ok := h.sessions.FromRequest(r)
	if !ok {
		return Session{}
	}
	return session
}

func (h *Handler) respondWorkflowError(w http.ResponseWriter, log aqm.Logger, err error, msg string) {
	switch {
	case IsValidationFailure(err):
		var vf *ValidationFailure
		errors.As(err, &vf)
		log.Debug("validation failed", "errors", vf.Errors)
		aqm.RespondError(w, http.StatusBadRequest, validationMessage(vf.Errors))
	case errors.Is(err, ErrTableConflict):
		log.Debug("table conflict", "error", err)
		aqm.RespondError(w, http.StatusConflict, "One or more tables were just reserved, pick different tables")
	case errors.Is(err, ErrNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
	default:
		log.Error(msg, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not complete the booking")
	}
}

func validationMessage(errs []ValidationError) string {
	if len(errs) == 0 {
		return "Validation failed"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return "Validation failed: " + strings.Join(msgs, "; ")
}

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

func (h *Handler) decodeCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (ReservationCreateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return ReservationCreateRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return ReservationCreateRequest{}, false
	}

	var req ReservationCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return ReservationCreateRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeUpdatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (ReservationUpdateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return ReservationUpdateRequest{}, false
	}

	var req ReservationUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return ReservationUpdateRequest{}, false
	}

	return req, true
}
