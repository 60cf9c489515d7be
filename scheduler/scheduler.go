package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/dhis2sync"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/qamisdata/inspections_backend/qamissync"
	"github.com/qamisdata/inspections_backend/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Trigger names, logged with every run and used as run-lock keys.
const (
	TriggerInspectionSync = "inspection-sync"
	TriggerSchoolSync     = "school-identification-sync"
	TriggerExportSweep    = "checklist-export-sweep"
	TriggerReschedule     = "missed-inspection-reschedule"
	TriggerDeferredExport = "deferred-export"
)

const runLockTTL = 25 * time.Minute

// Scheduler owns the cron triggers and the deferred one-shot queue.
type Scheduler struct {
	cron     *cron.Cron
	queue    *OneShotQueue
	worker   *qamissync.Worker
	exporter *dhis2sync.Exporter
	logger   *logrus.Logger

	// Per-trigger local mutexes back up the run lock when Redis is not
	// configured, so overlapping runs of the same trigger cannot happen
	// inside one process either way.
	localMu sync.Map
}

func New(worker *qamissync.Worker, exporter *dhis2sync.Exporter) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		queue:    NewOneShotQueue(),
		worker:   worker,
		exporter: exporter,
		logger:   config.GetLogger(),
	}
}

// Start registers all cron triggers and starts the clock.
func (s *Scheduler) Start() error {
	qamisConf := config.GetQamisConfig()
	dhis2Conf := config.GetDHIS2Config()

	entries := []struct {
		spec    string
		trigger string
		run     func(ctx context.Context) error
	}{
		{qamisConf.InspectionSyncCron, TriggerInspectionSync, s.worker.RunInspectionIngestion},
		{qamisConf.SchoolSyncCron, TriggerSchoolSync, s.worker.RunSchoolIdentificationSync},
		{dhis2Conf.ExportSyncCron, TriggerExportSweep, s.exporter.RunChecklistExportSweep},
		{dhis2Conf.RescheduleCron, TriggerReschedule, s.RescheduleMissedInspections},
	}

	for _, entry := range entries {
		trigger, run := entry.trigger, entry.run
		_, err := s.cron.AddFunc(entry.spec, func() {
			s.runExclusive(trigger, run)
		})
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"module":  "scheduler",
			"trigger": trigger,
			"cron":    entry.spec,
		}).Info("registered trigger")
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron clock and the one-shot queue; in-flight runs are
// allowed to finish.
func (s *Scheduler) Stop() context.Context {
	s.queue.Stop()
	return s.cron.Stop()
}

// RescheduleMissedInspections is the daily compensation pass: approved,
// unsynced inspections whose start date has been reached get a deferred
// one-shot export at start-of-day + 1 hour when that instant is still
// ahead. Inspections that became eligible after today's main sweep ran
// are picked up the same day instead of waiting for tomorrow.
func (s *Scheduler) RescheduleMissedInspections(ctx context.Context) error {
	now := time.Now()
	missed, err := models.FindMissedInspections(ctx, now)
	if err != nil {
		config.LogError(s.logger, "scheduler", "RescheduleMissedInspections",
			"failed to load missed inspections", nil, err)
		return err
	}

	var queued int
	for _, inspection := range missed {
		if inspection.StartDate == nil {
			continue
		}
		start := *inspection.StartDate
		processAt := time.Date(start.Year(), start.Month(), start.Day(),
			0, 0, 0, 0, now.Location()).Add(time.Hour)
		if !processAt.After(now) {
			// Window already passed today; the regular sweep retries it.
			continue
		}

		name := inspection.Name
		s.queue.Schedule(processAt, TriggerDeferredExport+":"+name, func(jobCtx context.Context) {
			s.runExclusive(TriggerDeferredExport, func(runCtx context.Context) error {
				return s.exporter.ExportInspectionByName(runCtx, name)
			})
		})
		queued++
	}

	s.logger.WithFields(logrus.Fields{
		"module": "scheduler",
		"missed": len(missed),
		"queued": queued,
	}).Info("missed inspection reschedule finished")
	return nil
}

// runExclusive runs one trigger under a run lock so overlapping runs of
// the same trigger cannot happen: a distributed redislock when Redis is
// configured, a process-local mutex otherwise. A run that finds the lock
// taken is dropped, not queued.
func (s *Scheduler) runExclusive(trigger string, run func(ctx context.Context) error) {
	mu := s.localMutex(trigger)
	if !mu.TryLock() {
		config.LogWarn(s.logger, "scheduler", "runExclusive",
			"previous run still in progress, skipping", trigger, "trigger overlap")
		return
	}
	defer mu.Unlock()

	ctx := utils.SetTriggerInContext(context.Background(), trigger)
	ctx = utils.SetCorrelationIdInContext(ctx, utils.CorrelationIdFromContextOrNew(nil))

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "runlock:"+trigger, runLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			config.LogWarn(s.logger, "scheduler", "runExclusive",
				"run lock held elsewhere, skipping", trigger, "trigger overlap")
			return
		} else if err != nil {
			config.LogError(s.logger, "scheduler", "runExclusive",
				"failed to obtain run lock for "+trigger, nil, err)
			return
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	started := time.Now()
	err := run(ctx)
	fields := logrus.Fields{
		"module":   "scheduler",
		"trigger":  trigger,
		"duration": time.Since(started).String(),
	}
	if err != nil {
		s.logger.WithFields(fields).Warn("trigger run finished with error")
		return
	}
	s.logger.WithFields(fields).Info("trigger run finished")
}

func (s *Scheduler) localMutex(trigger string) *sync.Mutex {
	v, _ := s.localMu.LoadOrStore(trigger, &sync.Mutex{})
	return v.(*sync.Mutex)
}
