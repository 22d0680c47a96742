package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"tripscout/database"
	"tripscout/services"

	"github.com/gin-gonic/gin"
)

type GenerateRequest struct {
	PlanID       string `json:"plan_id" binding:"required"`
	TravelerName string `json:"traveler_name"`
}

type GenerateResponse struct {
	PlanID  string `json:"plan_id"`
	PDFURL  string `json:"pdf_url"`
	Message string `json:"message"`
}

// GenerateHandler renders a saved plan's recommendation to PDF and stores the
// bytes on the plan record (no filesystem needed).
func GenerateHandler(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	plan, err := database.GetPlan(req.PlanID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vacation plan not found"})
		return
	}

	var result services.PlanResult
	if err := json.Unmarshal([]byte(plan.ResultJSON), &result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse saved recommendation"})
		return
	}

	pdfBytes, err := services.GeneratePDFBytes(services.PDFData{
		TravelerName: req.TravelerName,
		Origin:       plan.Origin,
		Destination:  plan.Destination,
		StartDate:    plan.StartDate,
		EndDate:      plan.EndDate,
		Adults:       plan.Adults,
		Result:       result,
	})
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	if err := database.UpdatePlanPDF(plan.ID, pdfBytes, req.TravelerName); err != nil {
		log.Printf("❌ Failed to store generated PDF: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store generated PDF"})
		return
	}

	log.Printf("✅ PDF generated for plan %s (%d bytes)", plan.ID, len(pdfBytes))

	c.JSON(http.StatusOK, GenerateResponse{
		PlanID:  plan.ID,
		PDFURL:  "/api/download/" + plan.ID,
		Message: "PDF generated successfully",
	})
}

func DownloadHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing plan ID"})
		return
	}

	plan, err := database.GetPlan(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vacation plan not found"})
		return
	}

	if len(plan.PDFData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "PDF has not been generated for this plan"})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=tripscout-plan.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", plan.PDFData)
}

func HealthHandler(c *gin.Context) {
	db := database.DB
	dbStatus := "ok"
	if db == nil {
		dbStatus = "not initialized"
	} else if err := db.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TripScout API",
		"database": dbStatus,
	})
}
