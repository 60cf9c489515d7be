package qamissync

import (
	"context"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/sirupsen/logrus"
)

// schoolSyncFloor is the cursor used on the very first school profile
// sweep, before a SyncInfo row exists.
var schoolSyncFloor = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

// Worker drives the scheduled QAMIS pulls.
type Worker struct {
	client *Client
	logger *logrus.Logger
}

func NewWorker(client *Client) *Worker {
	return &Worker{client: client, logger: config.GetLogger()}
}

// RunInspectionIngestion pulls every approved inspection and reconciles
// each one into the store. Failures are isolated per inspection: one bad
// record is logged and skipped, the sweep continues. Only a failure of
// the listing call itself aborts the run.
func (w *Worker) RunInspectionIngestion(ctx context.Context) error {
	summaries, err := w.client.FetchApprovedInspections(ctx)
	if err != nil {
		config.LogError(w.logger, "qamissync", "RunInspectionIngestion",
			"failed to list approved inspections", nil, err)
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"module": "qamissync",
		"count":  len(summaries),
	}).Info("reconciling approved inspections")

	var written int
	for _, summary := range summaries {
		detail, err := w.client.FetchInspectionDetail(ctx, summary.Name)
		if err != nil {
			config.LogError(w.logger, "qamissync", "RunInspectionIngestion",
				"failed to fetch inspection "+summary.Name, nil, err)
			continue
		}

		updated, err := SyncInspection(ctx, ToInspection(detail))
		if err != nil {
			config.LogError(w.logger, "qamissync", "RunInspectionIngestion",
				"failed to reconcile inspection "+summary.Name, nil, err)
			continue
		}
		if updated {
			written++
		}
	}

	w.logger.WithFields(logrus.Fields{
		"module":  "qamissync",
		"fetched": len(summaries),
		"written": written,
	}).Info("inspection ingestion finished")
	return nil
}

// RunSchoolIdentificationSync pulls school profiles modified since the
// stored cursor and upserts them. The cursor advances to the newest
// modification that was stored, so a profile that fails while a
// later-modified one succeeds is not retried until its next source
// modification.
func (w *Worker) RunSchoolIdentificationSync(ctx context.Context) error {
	since, ok, err := models.GetLastSyncTime(ctx, models.SyncInfoSchoolIdentification)
	if err != nil {
		config.LogError(w.logger, "qamissync", "RunSchoolIdentificationSync",
			"failed to load sync cursor", nil, err)
		return err
	}
	if !ok {
		since = schoolSyncFloor
	}

	rows, err := w.client.FetchSchoolIdentifications(ctx, since.Format(timestampLayout))
	if err != nil {
		config.LogError(w.logger, "qamissync", "RunSchoolIdentificationSync",
			"failed to list school identifications", nil, err)
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	newest := since
	for _, row := range rows {
		record, err := w.client.FetchSchoolIdentificationDetail(ctx, row.Name)
		if err != nil {
			config.LogError(w.logger, "qamissync", "RunSchoolIdentificationSync",
				"failed to fetch school "+row.Name, nil, err)
			continue
		}

		profile := toSchoolIdentification(record)
		if err := models.UpsertSchoolIdentification(ctx, profile); err != nil {
			config.LogError(w.logger, "qamissync", "RunSchoolIdentificationSync",
				"failed to store school "+row.Name, nil, err)
			continue
		}
		if profile.LastModified.After(newest) {
			newest = profile.LastModified
		}
	}

	if newest.After(since) {
		if err := models.SetLastSyncTime(ctx, models.SyncInfoSchoolIdentification, newest); err != nil {
			config.LogError(w.logger, "qamissync", "RunSchoolIdentificationSync",
				"failed to advance sync cursor", nil, err)
			return err
		}
	}

	w.logger.WithFields(logrus.Fields{
		"module": "qamissync",
		"count":  len(rows),
		"cursor": newest,
	}).Info("school identification sync finished")
	return nil
}

func toSchoolIdentification(record *SchoolIdentificationRecord) *models.SchoolIdentification {
	return &models.SchoolIdentification{
		SchoolName:               record.Name,
		SchoolCode:               record.SchoolCode,
		SchoolStatus:             record.Status,
		SchoolOwner:              record.SchoolOwner,
		AccommodationStatus:      record.AccommodationStatus,
		YearOfEstablishment:      record.YearOfEstablishment,
		Village:                  record.Village,
		Cell:                     record.Cell,
		Sector:                   record.Sector,
		District:                 record.District,
		Province:                 record.Province,
		HeadteacherName:          record.HeadteacherName,
		HeadteacherQualification: record.HeadteacherQualification,
		HeadteacherTelephone:     record.HeadteacherTelephone,
		NumberOfBoys:             record.NumberOfBoys,
		NumberOfGirls:            record.NumberOfGirls,
		TotalStudents:            record.TotalStudents,
		StudentsWithSEN:          record.StudentsWithSEN,
		NumberOfMaleTeachers:     record.NumberOfMaleTeachers,
		NumberOfFemaleTeachers:   record.NumberOfFemaleTeachers,
		TotalTeachers:            record.TotalTeachers,
		NumberOfClassrooms:       record.NumberOfClassrooms,
		NumberOfLatrines:         record.NumberOfLatrines,
		LastModified:             parseSchoolModified(record),
	}
}

func parseSchoolModified(record *SchoolIdentificationRecord) time.Time {
	t, err := time.Parse(timestampLayout, record.Modified)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
