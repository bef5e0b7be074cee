package accounts

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/tavolaclub/tavola/internal/reservations"
	"github.com/tavolaclub/tavola/internal/takeaway"
)

const MaxBodyBytes = 1 << 20

// RegisterRequest represents the signup payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// LoginRequest represents the signin payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a successful authentication response.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token,omitempty"`
}

type Handler struct {
	users        UserRepo
	sessions     *SessionStore
	reservations reservations.ReservationRepo
	orders       takeaway.OrderRepo
	logger       aqm.Logger
	tlm          *telemetry.HTTP
}

type HandlerDeps struct {
	Users        UserRepo
	Sessions     *SessionStore
	Reservations reservations.ReservationRepo
	Orders       takeaway.OrderRepo
}

// NewHandler creates a new Handler for account operations.
func NewHandler(deps HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		users:        deps.Users,
		sessions:     deps.Sessions,
		reservations: deps.Reservations,
		orders:       deps.Orders,
		logger:       logger,
		tlm:          telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})
	r.Get("/orders-by-phone/{phone}", h.OrdersByPhone)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Register")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req RegisterRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateRegisterRequest(req.Name, req.Email, req.Phone, req.Password); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(errs, "; "))
		return
	}

	phone := reservations.NormalizePhone(req.Phone)

	user, err := SignUpUser(ctx, h.users, req.Name, req.Email, phone, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			log.Debug("user already exists")
			aqm.RespondError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Error("cannot create user", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, AuthResponse{User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Login")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req LoginRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateLoginRequest(req.Email, req.Password); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(errs, "; "))
		return
	}

	user, token, err := SignInUser(ctx, h.users, h.sessions, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Debug("invalid credentials")
			aqm.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error("error signing in", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	aqm.RespondSuccess(w, AuthResponse{User: user, Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Logout")
	defer finish()

	log := h.log(r)

	if token := bearerToken(r); token != "" {
		h.sessions.Invalidate(token)
	}

	log.Debug("user signed out")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OrdersByPhone(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OrdersByPhone")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	phone := reservations.NormalizePhone(chi.URLParam(r, "phone"))
	if len(phone) != 10 {
		aqm.RespondError(w, http.StatusBadRequest, "Phone must have 10 digits")
		return
	}

	entries, err := OrderHistory(ctx, h.reservations, h.orders, phone)
	if err != nil {
		log.Error("error retrieving order history", "error", err, "phone", phone)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve order history")
		return
	}

	aqm.RespondCollection(w, entries, "order-history")
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("cannot read request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		log.Debug("empty request body")
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("cannot decode JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not parse JSON")
		return false
	}

	return true
}

func (h *Handler) log(req ...*http.Request) aqm.Logger {
	if len(req) > 0 && req[0] != nil {
		r := req[0]
		return h.logger.With(
			"request_id", aqm.RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	return h.logger
}
