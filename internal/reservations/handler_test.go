package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	aqm "github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func newTestHandler(t *testing.T) (*Handler, *BookingService, *MockTableRepo) {
	t.Helper()
	svc, _, _ := newTestService(nil)
	tableRepo := NewMockTableRepo()

	h := NewHandler(HandlerDeps{
		TableRepo: tableRepo,
		Service:   svc,
	}, aqm.NewConfig(), nil)

	return h, svc, tableRepo
}

func withOrderIDParam(req *http.Request, orderID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func createPayload(t *testing.T, req ReservationCreateRequest) []byte {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("cannot marshal payload: %v", err)
	}
	return body
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(HandlerDeps{}, aqm.NewConfig(), nil)

	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
	if h.logger == nil {
		t.Error("NewHandler() should set noop logger when nil")
	}
}

func TestHandlerListTables(t *testing.T) {
	h, _, tableRepo := newTestHandler(t)

	table := NewTable()
	table.Number = 1
	if err := tableRepo.Create(context.Background(), table); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	w := httptest.NewRecorder()
	h.ListTables(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ListTables() status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHandlerReservedTables(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{
			name:           "missingParams",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknownSlot",
			query:          "?date=2026-09-12&time=10%3A00%20PM",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validSlot",
			query:          "?date=2026-09-12&time=07%3A00%20PM",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "badExclude",
			query:          "?date=2026-09-12&time=07%3A00%20PM&exclude=nope",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newTestHandler(t)

			req := httptest.NewRequest(http.MethodGet, "/reserved-tables"+tt.query, nil)
			w := httptest.NewRecorder()
			h.ReservedTables(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("ReservedTables() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerCreateReservation(t *testing.T) {
	tests := []struct {
		name           string
		payload        func(t *testing.T) []byte
		expectedStatus int
	}{
		{
			name: "created",
			payload: func(t *testing.T) []byte {
				return createPayload(t, validCreateRequest())
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "validationFailure",
			payload: func(t *testing.T) []byte {
				req := validCreateRequest()
				req.Phone = "12345"
				return createPayload(t, req)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "emptyBody",
			payload: func(t *testing.T) []byte {
				return nil
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "malformedJSON",
			payload: func(t *testing.T) []byte {
				return []byte("{not json")
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newTestHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/reserve", bytes.NewReader(tt.payload(t)))
			w := httptest.NewRecorder()
			h.CreateReservation(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("CreateReservation() status = %d, want %d, body %s", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestHandlerCreateReservationConflict(t *testing.T) {
	h, svc, _ := newTestHandler(t)

	existing := testReservation("T1", "T2")
	existing.Date = "2026-09-12"
	existing.TimeSlot = "07:00 PM"
	if err := svc.Create(context.Background(), existing); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	payload := validCreateRequest()
	payload.Tables = []string{"T2", "T3"}

	req := httptest.NewRequest(http.MethodPost, "/reserve", bytes.NewReader(createPayload(t, payload)))
	w := httptest.NewRecorder()
	h.CreateReservation(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("CreateReservation() status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestHandlerGetReservation(t *testing.T) {
	h, svc, _ := newTestHandler(t)

	reservation := testReservation("T1")
	if err := svc.Create(context.Background(), reservation); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name           string
		orderID        string
		expectedStatus int
	}{
		{
			name:           "found",
			orderID:        reservation.ID.String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "notFound",
			orderID:        uuid.New().String(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalidID",
			orderID:        "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/reservation/"+tt.orderID, nil)
			req = withOrderIDParam(req, tt.orderID)

			w := httptest.NewRecorder()
			h.GetReservation(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("GetReservation() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerCancelReservation(t *testing.T) {
	h, svc, _ := newTestHandler(t)
	ctx := context.Background()

	reservation := testReservation("T1")
	if err := svc.Create(ctx, reservation); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	orderID := reservation.ID.String()

	req := httptest.NewRequest(http.MethodDelete, "/reservation/"+orderID, nil)
	req = withOrderIDParam(req, orderID)
	w := httptest.NewRecorder()
	h.CancelReservation(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("CancelReservation() status = %d, want %d", w.Code, http.StatusOK)
	}

	// Cancelling again reports not found.
	req = httptest.NewRequest(http.MethodDelete, "/reservation/"+orderID, nil)
	req = withOrderIDParam(req, orderID)
	w = httptest.NewRecorder()
	h.CancelReservation(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("second CancelReservation() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandlerUpdateReservation(t *testing.T) {
	h, svc, _ := newTestHandler(t)
	ctx := context.Background()

	reservation := testReservation("T1", "T2")
	reservation.Date = "2026-09-12"
	reservation.TimeSlot = "07:00 PM"
	if err := svc.Create(ctx, reservation); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	update := ReservationUpdateRequest{
		OrderID:  reservation.ID,
		FullName: "Ada Lovelace",
		Phone:    "9876543210",
		Email:    "ada@example.com",
		Date:     "2026-09-12",
		Time:     "05:00 PM",
		Guests:   2,
		Tables:   []string{"T4"},
		Agree:    true,
	}
	body, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("cannot marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/update-reservation", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateReservation(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("UpdateReservation() status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	got, err := svc.Get(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TimeSlot != "05:00 PM" {
		t.Errorf("TimeSlot = %q, want %q", got.TimeSlot, "05:00 PM")
	}
	if !got.HoldsTable("T4") || got.HoldsTable("T1") {
		t.Errorf("TableIDs = %v, want only T4", got.TableIDs)
	}

	// The original slot's tables are free again.
	taken, err := svc.ReservedTables(ctx, "2026-09-12", "07:00 PM", uuid.Nil)
	if err != nil {
		t.Fatalf("ReservedTables() error = %v", err)
	}
	if len(taken) != 0 {
		t.Errorf("old slot still holds %v, want none", taken)
	}
}

func TestHandlerUpdateUnknownReservation(t *testing.T) {
	h, _, _ := newTestHandler(t)

	update := ReservationUpdateRequest{
		OrderID:  uuid.New(),
		FullName: "Ada Lovelace",
		Phone:    "9876543210",
		Email:    "ada@example.com",
		Date:     "2026-09-12",
		Time:     "05:00 PM",
		Guests:   2,
		Tables:   []string{"T1"},
		Agree:    true,
	}
	body, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("cannot marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/update-reservation", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.UpdateReservation(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("UpdateReservation() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
