package dhis2sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerExportHandler runs the export sweep on demand.
func TriggerExportHandler(exporter *Exporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := exporter.RunChecklistExportSweep(c.Request.Context()); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "export sweep failed, see logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ExportInspectionHandler exports a single inspection by name, skipping
// it if already synced.
func ExportInspectionHandler(exporter *Exporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := exporter.ExportInspectionByName(c.Request.Context(), name); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "export failed, see logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
