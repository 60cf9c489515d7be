package dhis2sync

import (
	"context"
	"errors"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Exporter pushes unsynced approved inspections to DHIS2.
type Exporter struct {
	client   *Client
	elements *ElementMap
	logger   *logrus.Logger
}

func NewExporter(client *Client, elements *ElementMap) *Exporter {
	return &Exporter{client: client, elements: elements, logger: config.GetLogger()}
}

// RunChecklistExportSweep exports every approved inspection still marked
// unsynced. Per-inspection failures are logged and skipped; a failed
// upload leaves the record unsynced so the next sweep retries it. This is
// also the "process now" path run once at startup.
func (e *Exporter) RunChecklistExportSweep(ctx context.Context) error {
	inspections, err := models.FindUnsyncedApprovedInspections(ctx)
	if err != nil {
		config.LogError(e.logger, "dhis2sync", "RunChecklistExportSweep",
			"failed to load unsynced inspections", nil, err)
		return err
	}
	if len(inspections) == 0 {
		return nil
	}

	e.logger.WithFields(logrus.Fields{
		"module": "dhis2sync",
		"count":  len(inspections),
	}).Info("exporting unsynced inspections")

	for i := range inspections {
		if err := e.exportOne(ctx, &inspections[i]); err != nil {
			config.LogError(e.logger, "dhis2sync", "RunChecklistExportSweep",
				"failed to export inspection "+inspections[i].Name, nil, err)
		}
	}
	return nil
}

// ExportInspectionByName exports one inspection if it is still eligible.
// The deferred reschedule path lands here, possibly long after it was
// queued, so the synced flag is re-checked from the store first.
func (e *Exporter) ExportInspectionByName(ctx context.Context, name string) error {
	inspection, err := models.FindInspectionByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.WithFields(logrus.Fields{
				"module":     "dhis2sync",
				"inspection": name,
			}).Warn("inspection vanished before deferred export")
			return nil
		}
		return err
	}
	if inspection.Synced != nil && *inspection.Synced {
		e.logger.WithFields(logrus.Fields{
			"module":     "dhis2sync",
			"inspection": name,
		}).Debug("already synced, skipping deferred export")
		return nil
	}
	if inspection.WorkflowState != models.WorkflowStateApproved {
		return nil
	}
	return e.exportOne(ctx, inspection)
}

func (e *Exporter) exportOne(ctx context.Context, inspection *models.Inspection) error {
	payload := BuildChecklistPayload(inspection, e.elements)
	if len(payload.DataValues) == 0 {
		e.logger.WithFields(logrus.Fields{
			"module":     "dhis2sync",
			"inspection": inspection.Name,
		}).Warn("no exportable data values, leaving unsynced")
		return nil
	}

	if err := e.client.Export(ctx, payload); err != nil {
		return err
	}
	return models.MarkInspectionSynced(ctx, inspection.Name)
}
