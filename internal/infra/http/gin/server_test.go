package ginserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	adssvc "immo/internal/app/services/ads"
	authsvc "immo/internal/app/services/auth"
	bookingssvc "immo/internal/app/services/bookings"
	propertiessvc "immo/internal/app/services/properties"
	userssvc "immo/internal/app/services/users"
	"immo/internal/infra/config"
	"immo/internal/infra/obs"
	"immo/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type sequenceTokens struct{ n int }

func (g *sequenceTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	properties := memory.NewPropertyRepository()
	ads := memory.NewAdRepository()
	bookings := memory.NewBookingRepository()
	outboxStore := memory.NewOutboxStore()

	auth := &authsvc.Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  plainHasher{},
		Tokens:     &sequenceTokens{},
		SessionTTL: time.Hour,
	}
	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Auth: AuthHandler{Service: auth},
		User: UserHandler{Service: &userssvc.Service{Users: users, Properties: properties}},
		Property: PropertyHandler{Service: &propertiessvc.Service{
			Properties: properties,
		}},
		Ad: AdHandler{Service: &adssvc.Service{
			Ads:        ads,
			Properties: properties,
			Outbox:     outboxStore,
		}},
		Booking: BookingHandler{Service: &bookingssvc.Service{
			Bookings:   bookings,
			Ads:        ads,
			Properties: properties,
			Outbox:     outboxStore,
		}},
		AuthMiddleware: AuthMiddleware{Service: auth}.Handle,
	})
	return server.Handler
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, handler http.Handler, email, role string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":      email,
		"first_name": "Jean",
		"last_name":  "Dupont",
		"password":   "s3cret-pass",
		"role":       role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", email)
	}
	return token
}

func createListing(t *testing.T, handler http.Handler, ownerToken string) (propertyID, adID string) {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/properties", ownerToken, map[string]any{
		"title":   "Rue Garibaldi 5",
		"type":    "apartment",
		"price":   280000,
		"surface": 64,
		"rooms":   3,
		"address": map[string]any{"city": "Lyon", "zip_code": "69003"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property: status %d, body %s", rec.Code, rec.Body.String())
	}
	propertyID, _ = decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/ads", ownerToken, map[string]any{
		"property_id": propertyID,
		"title":       "Apartment for sale",
		"type":        "sale",
		"price":       280000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ad: status %d, body %s", rec.Code, rec.Body.String())
	}
	adID, _ = decodeBody(t, rec)["id"].(string)
	return propertyID, adID
}

func TestBookingFlow(t *testing.T) {
	handler := newTestServer(t)
	ownerToken := registerUser(t, handler, "owner@example.com", "owner")
	clientToken := registerUser(t, handler, "client@example.com", "client")
	propertyID, adID := createListing(t, handler, ownerToken)

	visitDate := time.Now().UTC().AddDate(0, 0, 3).Format(time.RFC3339)
	bookingBody := map[string]any{
		"ad_id":       adID,
		"property_id": propertyID,
		"date":        visitDate,
		"time_slot":   map[string]any{"start": "10:00", "end": "11:00"},
		"message":     "interested in a visit",
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", "", bookingBody)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous booking: status %d, want 401", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/bookings", clientToken, bookingBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d, body %s", rec.Code, rec.Body.String())
	}
	booking := decodeBody(t, rec)
	if booking["status"] != "pending" {
		t.Errorf("new booking should be pending, got %v", booking["status"])
	}
	bookingID, _ := booking["id"].(string)

	// The same slot is gone for everyone else.
	otherToken := registerUser(t, handler, "other@example.com", "client")
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/bookings", otherToken, bookingBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflicting booking: status %d, want 409", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", ownerToken, map[string]any{
		"status": "confirmed",
		"notes":  "come at ten sharp",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm booking: status %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["status"]; got != "confirmed" {
		t.Errorf("status = %v, want confirmed", got)
	}

	// The client, not the other client, may read the booking.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/bookings/"+bookingID, otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign read: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/bookings/"+bookingID, clientToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("client read: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestPropertyRoleGuard(t *testing.T) {
	handler := newTestServer(t)
	clientToken := registerUser(t, handler, "client@example.com", "client")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/properties", clientToken, map[string]any{
		"title":   "Rue Garibaldi 5",
		"type":    "apartment",
		"price":   280000,
		"surface": 64,
		"address": map[string]any{"city": "Lyon", "zip_code": "69003"},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("client property create: status %d, want 403", rec.Code)
	}
}

func TestSearchIsPublic(t *testing.T) {
	handler := newTestServer(t)
	ownerToken := registerUser(t, handler, "owner@example.com", "owner")
	createListing(t, handler, ownerToken)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/properties?city=lyon", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("property search: status %d, body %s", rec.Code, rec.Body.String())
	}
	page := decodeBody(t, rec)
	if total, _ := page["total"].(float64); total != 1 {
		t.Errorf("total = %v, want 1", page["total"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/ads", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ad search: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":      "not-an-email",
		"first_name": "Jean",
		"last_name":  "Dupont",
		"password":   "s3cret-pass",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad email: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":      "admin@example.com",
		"first_name": "Jean",
		"last_name":  "Dupont",
		"password":   "s3cret-pass",
		"role":       "admin",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin self-registration: status %d, want 403", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/livez", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("livez: status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz: status %d", rec.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"BEARER abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer    abc123  ", "abc123"},
		{"abc123", ""},
	}
	for _, tc := range cases {
		if got := extractBearerToken(tc.header); got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
