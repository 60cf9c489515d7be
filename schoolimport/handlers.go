package schoolimport

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
)

const maxUploadBytes = 10 << 20

// UploadSchoolsHandler accepts a school master spreadsheet (xlsx or csv)
// as multipart field "file" and upserts the parsed rows.
func UploadSchoolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if header.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}
		defer file.Close()

		var rows [][]string
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".xlsx":
			rows, err = ReadWorkbook(file)
		case ".csv":
			rows, err = ReadCSV(file)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected a .xlsx or .csv file"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse file"})
			return
		}

		schools, report := ParseSchoolRows(rows)
		if err := models.UpsertSchools(c.Request.Context(), schools); err != nil {
			config.LogError(config.GetLogger(), "schoolimport", "UploadSchoolsHandler",
				"failed to store imported schools", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store schools"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
