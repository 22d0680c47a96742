package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"tripscout/database"

	"github.com/gin-gonic/gin"
)

// Saved plans are scoped to the opaque user id from the identity layer;
// every operation here requires the X-User-ID header.

func requireUserID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing X-User-ID header"})
		return "", false
	}
	return userID, true
}

func ListPlansHandler(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plans, err := database.ListPlansByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vacation plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func GetPlanHandler(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plan, err := database.GetPlan(c.Param("id"))
	if err != nil || plan.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vacation plan not found"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func DeletePlanHandler(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := database.DeletePlan(c.Param("id"), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacation plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vacation plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vacation plan deleted"})
}
