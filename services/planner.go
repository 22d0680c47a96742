package services

import (
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ─── Spending Plans ───────────────────────────────────────────────────────────

const (
	PlanEconomic = "economic"
	PlanBusiness = "business"
	PlanLuxury   = "luxury"
)

// Priced is any candidate carrying the provider's decimal price string.
type Priced interface {
	PriceAmount() string
}

// parsePrice reports the parsed price and whether it is usable for
// comparison. Unparsable, negative, and non-finite prices are unusable;
// such candidates are excluded from selection rather than sorted as NaN.
func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// priceOrZero is the reconciliation view of a price: anything unusable
// contributes nothing to the totals.
func priceOrZero(s string) float64 {
	v, ok := parsePrice(s)
	if !ok {
		return 0
	}
	return v
}

// ─── Tier Selector ────────────────────────────────────────────────────────────

// SelectByPlan picks exactly one candidate by price ordering: the cheapest
// for economic, the most expensive for luxury, and the lower-middle of the
// sorted list for business (and for any unrecognized plan). The sort is
// stable, so equally priced candidates keep their provider order. Returns
// false when no candidate has a usable price.
func SelectByPlan[T Priced](items []T, plan string) (T, bool) {
	var zero T

	type entry struct {
		item  T
		price float64
	}
	entries := make([]entry, 0, len(items))
	for _, it := range items {
		if p, ok := parsePrice(it.PriceAmount()); ok {
			entries = append(entries, entry{item: it, price: p})
		}
	}
	if len(entries) == 0 {
		return zero, false
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].price < entries[j].price
	})

	switch plan {
	case PlanEconomic:
		return entries[0].item, true
	case PlanLuxury:
		return entries[len(entries)-1].item, true
	default: // business
		return entries[len(entries)/2].item, true
	}
}

// ─── Budget-Aware Activity Selector ───────────────────────────────────────────

// ActivitySelection reports the picked activity and whether it blew through
// the remaining budget. These are intermediate signals; the reconciled
// BudgetBreakdown is the one surfaced to the user.
type ActivitySelection struct {
	Activity       *Activity
	BudgetExceeded bool
	ExceedAmount   float64
}

// SelectActivityWithinBudget prefers activities priced within the remaining
// budget. When nothing fits it still recommends one from the full list and
// reports by how much the budget is exceeded (clamped to zero).
func SelectActivityWithinBudget(activities []Activity, remainingBudget float64, plan string) ActivitySelection {
	if len(activities) == 0 {
		return ActivitySelection{}
	}

	affordable := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if p, ok := parsePrice(a.Price); ok && p <= remainingBudget {
			affordable = append(affordable, a)
		}
	}

	if len(affordable) > 0 {
		selected, ok := SelectByPlan(affordable, plan)
		if !ok {
			return ActivitySelection{}
		}
		return ActivitySelection{Activity: &selected}
	}

	selected, ok := SelectByPlan(activities, plan)
	if !ok {
		return ActivitySelection{}
	}

	exceed := priceOrZero(selected.Price) - remainingBudget
	return ActivitySelection{
		Activity:       &selected,
		BudgetExceeded: exceed > 0,
		ExceedAmount:   math.Max(0, exceed),
	}
}

// ─── Budget Reconciler ────────────────────────────────────────────────────────

// BudgetBreakdown is the single source of truth for budget status shown to
// the user, computed once per request. With no budget supplied it is computed
// against an implicit zero budget, so RemainingBudget goes negative without
// meaning "over budget": BudgetExceeded requires a positive budget.
type BudgetBreakdown struct {
	FlightCost      float64 `json:"flightCost"`
	HotelCost       float64 `json:"hotelCost"`
	ActivityCost    float64 `json:"activityCost"`
	TotalCost       float64 `json:"totalCost"`
	RemainingBudget float64 `json:"remainingBudget"`
	BudgetExceeded  bool    `json:"budgetExceeded"`
	ExceedAmount    float64 `json:"exceedAmount"`
}

// CalculateBudgetBreakdown aggregates the three selected costs against the
// stated budget. An absent candidate contributes 0.
func CalculateBudgetBreakdown(flight *Flight, hotel *Hotel, activity *Activity, budget float64) BudgetBreakdown {
	var flightCost, hotelCost, activityCost float64
	if flight != nil {
		flightCost = priceOrZero(flight.Price)
	}
	if hotel != nil {
		hotelCost = priceOrZero(hotel.Price)
	}
	if activity != nil {
		activityCost = priceOrZero(activity.Price)
	}

	totalCost := flightCost + hotelCost + activityCost
	budgetExceeded := totalCost > budget && budget > 0

	exceedAmount := 0.0
	if budgetExceeded {
		exceedAmount = totalCost - budget
	}

	return BudgetBreakdown{
		FlightCost:      flightCost,
		HotelCost:       hotelCost,
		ActivityCost:    activityCost,
		TotalCost:       totalCost,
		RemainingBudget: budget - totalCost,
		BudgetExceeded:  budgetExceeded,
		ExceedAmount:    exceedAmount,
	}
}

// ─── Orchestrator ─────────────────────────────────────────────────────────────

type PlanRequest struct {
	Origin      string
	Destination string
	StartDate   string
	Adults      int
	Plan        string
	Budget      float64 // 0 means no budget supplied
}

// TripSummary counts the unfiltered candidates found per category, so the
// user can see how wide the pool was regardless of which item was chosen.
type TripSummary struct {
	TotalFlights    int `json:"totalFlights"`
	TotalHotels     int `json:"totalHotels"`
	TotalActivities int `json:"totalActivities"`
}

type PlanResult struct {
	Flight   *Flight         `json:"flight"`
	Hotel    *Hotel          `json:"hotel"`
	Activity *Activity       `json:"activity"`
	Plan     string          `json:"plan"`
	Budget   BudgetBreakdown `json:"budget"`
	Summary  TripSummary     `json:"summary"`
}

// PlanVacation runs the three searches in order, cascading the remaining
// budget from one category to the next: flight, then hotel (list plus batched
// pricing), then activities keyed off the first hotel reference that carries
// a geocode. There is no backtracking; an unaffordable hotel never reopens
// the flight choice. Any primary search failure aborts the whole plan.
func (c *AmadeusClient) PlanVacation(req PlanRequest) (*PlanResult, error) {
	flights, err := c.SearchFlights(req.Origin, req.Destination, req.StartDate, req.Adults)
	if err != nil {
		return nil, err
	}

	var selectedFlight *Flight
	if f, ok := SelectByPlan(flights, req.Plan); ok {
		selectedFlight = &f
	}

	hotelRefs, err := c.SearchHotelList(req.Destination)
	if err != nil {
		return nil, err
	}

	hotels, err := c.FetchHotelPrices(hotelRefs)
	if err != nil {
		return nil, err
	}

	var selectedHotel *Hotel
	if h, ok := SelectByPlan(hotels, req.Plan); ok {
		selectedHotel = &h
	}

	var flightCost, hotelCost float64
	if selectedFlight != nil {
		flightCost = priceOrZero(selectedFlight.Price)
	}
	if selectedHotel != nil {
		hotelCost = priceOrZero(selectedHotel.Price)
	}
	remainingForActivities := req.Budget - flightCost - hotelCost

	// Activities are searched around one representative hotel. When no hotel
	// in the list carries a geocode the category stays empty.
	var activities []Activity
	if geo := firstGeocoded(hotelRefs); geo != nil {
		activities, err = c.SearchActivities(geo.Latitude, geo.Longitude)
		if err != nil {
			return nil, err
		}
	}

	var selectedActivity *Activity
	if req.Budget > 0 && remainingForActivities > 0 {
		selection := SelectActivityWithinBudget(activities, remainingForActivities, req.Plan)
		selectedActivity = selection.Activity
		if selection.BudgetExceeded {
			log.Printf("⚠️  Selected activity exceeds remaining budget by $%.2f", selection.ExceedAmount)
		}
	} else if a, ok := SelectByPlan(activities, req.Plan); ok {
		selectedActivity = &a
	}

	breakdown := CalculateBudgetBreakdown(selectedFlight, selectedHotel, selectedActivity, req.Budget)

	return &PlanResult{
		Flight:   selectedFlight,
		Hotel:    selectedHotel,
		Activity: selectedActivity,
		Plan:     req.Plan,
		Budget:   breakdown,
		Summary: TripSummary{
			TotalFlights:    len(flights),
			TotalHotels:     len(hotels),
			TotalActivities: len(activities),
		},
	}, nil
}

func firstGeocoded(refs []HotelRef) *GeoCode {
	for _, r := range refs {
		if r.GeoCode != nil {
			return r.GeoCode
		}
	}
	return nil
}
