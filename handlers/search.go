package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
	"tripscout/database"
	"tripscout/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SearchRequest struct {
	Origin      string  `json:"origin" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	StartDate   string  `json:"startDate" binding:"required"`
	EndDate     string  `json:"endDate" binding:"required"`
	Adults      int     `json:"adults"`
	Plan        string  `json:"plan" binding:"required,oneof=economic business luxury"`
	Budget      float64 `json:"budget" binding:"omitempty,gt=0"`
}

// SearchResponse is the PlanResult plus the id of the saved plan, when the
// caller identified themselves and persistence succeeded.
type SearchResponse struct {
	*services.PlanResult
	PlanID string `json:"planId,omitempty"`
}

// SearchHandler runs one budget-constrained recommendation: flight, then
// hotel, then activity, each picked by the requested spending plan with the
// remaining budget cascading between stages. Note that summary.totalHotels
// counts only hotels that came back with a usable price; a failed pricing
// batch and "no offers" are indistinguishable in that count.
func SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))

	if req.Adults <= 0 {
		req.Adults = 1
	}

	if len(req.Origin) != 3 || len(req.Destination) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location codes must be exactly 3 characters (e.g. LHR, PAR)"})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format. Use YYYY-MM-DD"})
		return
	}

	// endDate is validated for the saved plan but does not drive the flight
	// query; only the outbound date does.
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format. Use YYYY-MM-DD"})
		return
	}
	if !endDate.After(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	client := services.GetAmadeusClient()
	if client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Travel data provider is not configured"})
		return
	}

	result, err := client.PlanVacation(services.PlanRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		Adults:      req.Adults,
		Plan:        req.Plan,
		Budget:      req.Budget,
	})
	if err != nil {
		log.Printf("❌ Vacation search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Vacation search failed",
			"details": err.Error(),
		})
		return
	}

	resp := SearchResponse{PlanResult: result}

	// Best-effort persistence for signed-in users; the recommendation is
	// still returned when the store is down.
	userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if userID != "" && database.DB != nil {
		resultJSON, _ := json.Marshal(result)
		plan := &database.VacationPlan{
			ID:          uuid.New().String(),
			UserID:      userID,
			Origin:      req.Origin,
			Destination: req.Destination,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Adults:      req.Adults,
			Plan:        req.Plan,
			Budget:      req.Budget,
			ResultJSON:  string(resultJSON),
		}
		if err := database.SavePlan(plan); err != nil {
			log.Printf("⚠️  Failed to save vacation plan: %v", err)
		} else {
			resp.PlanID = plan.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}
