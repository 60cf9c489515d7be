package qamissync

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"gorm.io/gorm"
)

// TriggerIngestionHandler runs the approved-inspection pull on demand.
// The sweep runs inline so the caller gets the real outcome.
func TriggerIngestionHandler(worker *Worker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := worker.RunInspectionIngestion(c.Request.Context()); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "ingestion failed, see logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ListInspectionsHandler returns one page of stored inspections.
func ListInspectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.SearchLimit)))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if offset < 0 {
			offset = 0
		}

		inspections, total, err := models.FindAllInspections(c.Request.Context(), limit, offset)
		if err != nil {
			config.LogError(config.GetLogger(), "qamissync", "ListInspectionsHandler",
				"failed to list inspections", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inspections"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"inspections": inspections, "total": total})
	}
}

// GetInspectionHandler returns one inspection with its full subgraph.
func GetInspectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		inspection, err := models.FindInspectionByName(c.Request.Context(), name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "inspection not found"})
				return
			}
			config.LogError(config.GetLogger(), "qamissync", "GetInspectionHandler",
				"failed to load inspection "+name, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inspection"})
			return
		}
		c.JSON(http.StatusOK, inspection)
	}
}
