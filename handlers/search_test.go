package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tripscout/services"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/search", SearchHandler)
	return r
}

func postSearch(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchHandlerValidation(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			"missing origin",
			`{"destination":"PAR","startDate":"2026-09-01","endDate":"2026-09-08","adults":1,"plan":"economic"}`,
			http.StatusBadRequest,
		},
		{
			"invalid plan",
			`{"origin":"LHR","destination":"PAR","startDate":"2026-09-01","endDate":"2026-09-08","adults":1,"plan":"first-class"}`,
			http.StatusBadRequest,
		},
		{
			"non-positive budget",
			`{"origin":"LHR","destination":"PAR","startDate":"2026-09-01","endDate":"2026-09-08","adults":1,"plan":"economic","budget":-100}`,
			http.StatusBadRequest,
		},
		{
			"location code wrong length",
			`{"origin":"LHRX","destination":"PAR","startDate":"2026-09-01","endDate":"2026-09-08","adults":1,"plan":"economic"}`,
			http.StatusBadRequest,
		},
		{
			"bad start date",
			`{"origin":"LHR","destination":"PAR","startDate":"01/09/2026","endDate":"2026-09-08","adults":1,"plan":"economic"}`,
			http.StatusBadRequest,
		},
		{
			"end date before start date",
			`{"origin":"LHR","destination":"PAR","startDate":"2026-09-08","endDate":"2026-09-01","adults":1,"plan":"economic"}`,
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postSearch(t, r, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if resp["error"] == nil || resp["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestSearchHandlerProviderNotConfigured(t *testing.T) {
	r := newTestRouter()
	services.SetAmadeusClient(nil)

	w := postSearch(t, r,
		`{"origin":"LHR","destination":"PAR","startDate":"2026-09-01","endDate":"2026-09-08","adults":1,"plan":"economic"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSearchHandlerSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","expires_in":1799}`)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [
			{"price": {"grandTotal": "300.00", "currency": "USD"},
			 "itineraries": [{"duration": "PT2H", "segments": [
				{"departure": {"iataCode": "LHR", "at": "2026-09-01T09:00:00"},
				 "arrival": {"iataCode": "PAR", "at": "2026-09-01T11:00:00"},
				 "carrierCode": "BA"}]}]}
		]}`)
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"hotelId": "H1", "geoCode": {"latitude": 48.85, "longitude": 2.35}}]}`)
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [
			{"hotel": {"name": "Hotel Test", "rating": "4", "address": {"lines": ["1 Rue"], "cityName": "Paris"}},
			 "offers": [{"price": {"total": "400.00", "currency": "USD"}}]}
		]}`)
	})
	mux.HandleFunc("/v1/shopping/activities", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [
			{"name": "Walking Tour", "description": "A stroll", "price": {"amount": "250.00", "currencyCode": "USD"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	services.SetAmadeusClient(services.NewAmadeusClient("id", "secret", srv.URL))
	t.Cleanup(func() { services.SetAmadeusClient(nil) })

	r := newTestRouter()
	w := postSearch(t, r,
		`{"origin":"lhr","destination":"par","startDate":"2026-09-01","endDate":"2026-09-08","adults":2,"plan":"economic","budget":1000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Flight *services.Flight `json:"flight"`
		Hotel  *services.Hotel  `json:"hotel"`
		Plan   string           `json:"plan"`
		Budget struct {
			TotalCost       float64 `json:"totalCost"`
			RemainingBudget float64 `json:"remainingBudget"`
			BudgetExceeded  bool    `json:"budgetExceeded"`
		} `json:"budget"`
		Summary struct {
			TotalFlights int `json:"totalFlights"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Flight == nil || resp.Flight.Price != "300.00" {
		t.Errorf("flight = %+v", resp.Flight)
	}
	if resp.Hotel == nil || resp.Hotel.Name != "Hotel Test" {
		t.Errorf("hotel = %+v", resp.Hotel)
	}
	if resp.Plan != "economic" {
		t.Errorf("plan = %s", resp.Plan)
	}
	if resp.Budget.TotalCost != 950 || resp.Budget.RemainingBudget != 50 || resp.Budget.BudgetExceeded {
		t.Errorf("budget = %+v", resp.Budget)
	}
	if resp.Summary.TotalFlights != 1 {
		t.Errorf("summary.totalFlights = %d, want 1", resp.Summary.TotalFlights)
	}
}

func TestSearchHandlerProviderFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","expires_in":1799}`)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	services.SetAmadeusClient(services.NewAmadeusClient("id", "secret", srv.URL))
	t.Cleanup(func() { services.SetAmadeusClient(nil) })

	r := newTestRouter()
	w := postSearch(t, r,
		`{"origin":"LHR","destination":"PAR","startDate":"2026-09-01","endDate":"2026-09-08","adults":1,"plan":"economic"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == nil || resp["details"] == nil {
		t.Errorf("error response missing fields: %v", resp)
	}
}
