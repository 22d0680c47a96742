package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// ─── Types ────────────────────────────────────────────────────────────────────

// Prices stay as the provider's decimal strings; they are parsed only at
// comparison/reconciliation time (see planner.go).

type Flight struct {
	Airline          string `json:"airline"`
	DepartureCity    string `json:"departure_city"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalCity      string `json:"arrival_city"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	Duration         string `json:"duration"`
	Price            string `json:"price"`
	Currency         string `json:"currency"`
}

type Hotel struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Rating   string `json:"rating"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
}

func (f Flight) PriceAmount() string   { return f.Price }
func (h Hotel) PriceAmount() string    { return h.Price }
func (a Activity) PriceAmount() string { return a.Price }

// GeoCode is a hotel's coordinates as reported by the hotel list endpoint.
type GeoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HotelRef is a lightweight reference from the hotel list endpoint; pricing
// requires a second, batched lookup. GeoCode is nil when the provider omits it.
type HotelRef struct {
	HotelID string
	GeoCode *GeoCode
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

const (
	// The hotel-offers endpoint rejects oversized id lists, so pricing is
	// looked up for at most maxHotelLookups refs, hotelBatchSize at a time.
	maxHotelLookups = 50
	hotelBatchSize  = 10

	hotelRadiusKM    = 10
	activityRadiusKM = 20
)

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

var amadeusClient *AmadeusClient

// NewAmadeusClient builds a client against the given base URL. Tests point
// this at an httptest server to fake the provider.
func NewAmadeusClient(clientID, clientSecret, baseURL string) *AmadeusClient {
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InitAmadeus wires the process-wide client from the environment. Missing
// credentials are a configuration error: the caller is expected to exit
// before serving rather than run without a travel-data provider.
func InitAmadeus() error {
	env := os.Getenv("AMADEUS_ENV")
	baseURL := "https://api.amadeus.com" // production
	if env == "" || env == "test" {
		baseURL = "https://test.api.amadeus.com" // free test environment
	}

	clientID := os.Getenv("AMADEUS_CLIENT_ID")
	clientSecret := os.Getenv("AMADEUS_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set")
	}

	amadeusClient = NewAmadeusClient(clientID, clientSecret, baseURL)

	// Pre-warm the token
	if err := amadeusClient.refreshToken(); err != nil {
		log.Printf("⚠️  Amadeus token pre-warm failed: %v", err)
	} else {
		log.Println("✅ Amadeus API authenticated")
	}
	return nil
}

func GetAmadeusClient() *AmadeusClient {
	return amadeusClient
}

// SetAmadeusClient replaces the process-wide client. Used by tests.
func SetAmadeusClient(c *AmadeusClient) {
	amadeusClient = c
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken() error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequest("POST",
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %v", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) getToken() (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) doRequest(method, path string) ([]byte, error) {
	token, err := c.getToken()
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

// SearchFlights runs the Flight Offers Search API and flattens each offer's
// first itinerary into a departure/arrival pair taken from its first and last
// segments. Zero matches is an empty slice, not an error.
func (c *AmadeusClient) SearchFlights(origin, destination, departureDate string, adults int) ([]Flight, error) {
	path := fmt.Sprintf(
		"/v2/shopping/flight-offers?originLocationCode=%s&destinationLocationCode=%s&departureDate=%s&adults=%d",
		url.QueryEscape(origin),
		url.QueryEscape(destination),
		url.QueryEscape(departureDate),
		adults,
	)

	body, err := c.doRequest("GET", path)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("flight search failed: parse response: %w", err)
	}

	flights := make([]Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}

		itinerary := offer.Itineraries[0]
		first := itinerary.Segments[0]
		last := itinerary.Segments[len(itinerary.Segments)-1]

		flights = append(flights, Flight{
			Airline:          first.CarrierCode,
			DepartureCity:    first.Departure.IataCode,
			DepartureAirport: first.Departure.IataCode,
			ArrivalCity:      last.Arrival.IataCode,
			ArrivalAirport:   last.Arrival.IataCode,
			DepartureTime:    first.Departure.At,
			ArrivalTime:      last.Arrival.At,
			Duration:         itinerary.Duration,
			Price:            offer.Price.GrandTotal,
			Currency:         offer.Price.Currency,
		})
	}

	return flights, nil
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string   `json:"hotelId"`
		GeoCode *GeoCode `json:"geoCode"`
	} `json:"data"`
}

// SearchHotelList returns lightweight hotel references near the destination
// city, 10 km radius, all star ratings.
func (c *AmadeusClient) SearchHotelList(destination string) ([]HotelRef, error) {
	path := fmt.Sprintf(
		"/v1/reference-data/locations/hotels/by-city?cityCode=%s&radius=%d&radiusUnit=KM&ratings=1,2,3,4,5",
		url.QueryEscape(destination), hotelRadiusKM,
	)

	body, err := c.doRequest("GET", path)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("hotel list failed: parse response: %w", err)
	}

	refs := make([]HotelRef, 0, len(resp.Data))
	for _, h := range resp.Data {
		if h.HotelID == "" {
			continue
		}
		refs = append(refs, HotelRef{HotelID: h.HotelID, GeoCode: h.GeoCode})
	}
	return refs, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			Name    string `json:"name"`
			Rating  string `json:"rating"`
			Address struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
		} `json:"hotel"`
		Offers []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// FetchHotelPrices looks up priced offers for at most 50 references, 10 per
// request. A batch that fails is skipped without retry and later batches
// still run, so partial results are expected. Only hotels carrying at least
// one offer are returned; each takes its first offer's price.
func (c *AmadeusClient) FetchHotelPrices(refs []HotelRef) ([]Hotel, error) {
	if len(refs) > maxHotelLookups {
		refs = refs[:maxHotelLookups]
	}

	hotels := make([]Hotel, 0, len(refs))
	for start := 0; start < len(refs); start += hotelBatchSize {
		end := min(start+hotelBatchSize, len(refs))
		ids := make([]string, 0, end-start)
		for _, r := range refs[start:end] {
			ids = append(ids, r.HotelID)
		}

		path := fmt.Sprintf("/v3/shopping/hotel-offers?hotelIds=%s",
			url.QueryEscape(strings.Join(ids, ",")))

		body, err := c.doRequest("GET", path)
		if err != nil {
			log.Printf("⚠️  Hotel pricing batch failed (%d ids), skipping: %v", len(ids), err)
			continue
		}

		var resp amadeusHotelOffersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			log.Printf("⚠️  Hotel pricing batch unparsable, skipping: %v", err)
			continue
		}

		for _, item := range resp.Data {
			if len(item.Offers) == 0 {
				continue
			}

			line := ""
			if len(item.Hotel.Address.Lines) > 0 {
				line = item.Hotel.Address.Lines[0]
			}
			address := strings.TrimSpace(fmt.Sprintf("%s, %s", line, item.Hotel.Address.CityName))

			name := item.Hotel.Name
			if name == "" {
				name = "Unknown"
			}
			rating := item.Hotel.Rating
			if rating == "" {
				rating = "N/A"
			}
			price := item.Offers[0].Price.Total
			if price == "" {
				price = "0"
			}
			currency := item.Offers[0].Price.Currency
			if currency == "" {
				currency = "USD"
			}

			hotels = append(hotels, Hotel{
				Name:     name,
				Address:  address,
				Rating:   rating,
				Price:    price,
				Currency: currency,
			})
		}
	}

	return hotels, nil
}

// ─── Activities ───────────────────────────────────────────────────────────────

type amadeusActivitiesResponse struct {
	Data []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"price"`
	} `json:"data"`
}

// SearchActivities returns tours and activities within 20 km of the given
// coordinates (a representative hotel's geocode).
func (c *AmadeusClient) SearchActivities(latitude, longitude float64) ([]Activity, error) {
	path := fmt.Sprintf("/v1/shopping/activities?latitude=%f&longitude=%f&radius=%d",
		latitude, longitude, activityRadiusKM)

	body, err := c.doRequest("GET", path)
	if err != nil {
		return nil, fmt.Errorf("activity search failed: %w", err)
	}

	var resp amadeusActivitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("activity search failed: parse response: %w", err)
	}

	activities := make([]Activity, 0, len(resp.Data))
	for _, a := range resp.Data {
		name := a.Name
		if name == "" {
			name = "Unknown Activity"
		}
		description := a.Description
		if description == "" {
			description = "No description available"
		}
		price := a.Price.Amount
		if price == "" {
			price = "0"
		}
		currency := a.Price.CurrencyCode
		if currency == "" {
			currency = "USD"
		}

		activities = append(activities, Activity{
			Name:        name,
			Description: description,
			Price:       price,
			Currency:    currency,
		})
	}

	return activities, nil
}
