package config

import (
	"os"
	"strings"
	"sync"
	"time"
)

// QamisConfig holds the source (QAMIS case-management) API settings.
// Auth is config-selectable: when APIToken is set the client sends
// "Authorization: token <apiToken>", otherwise basic credentials.
type QamisConfig struct {
	APIURL   string
	APIToken string
	Username string
	Password string

	// Cron expressions (six-field, seconds first).
	InspectionSyncCron string
	SchoolSyncCron     string

	HTTPTimeout time.Duration
}

// DHIS2Config holds the destination (DHIS2) API settings.
type DHIS2Config struct {
	APIURL   string
	Username string
	Password string

	ExportSyncCron string
	RescheduleCron string

	HTTPTimeout time.Duration
}

var (
	qamisOnce sync.Once
	qamisConf QamisConfig
	dhis2Once sync.Once
	dhis2Conf DHIS2Config
)

func GetQamisConfig() QamisConfig {
	qamisOnce.Do(func() {
		qamisConf = QamisConfig{
			APIURL:             strings.TrimRight(strings.TrimSpace(os.Getenv("QAMIS_API_URL")), "/"),
			APIToken:           strings.TrimSpace(os.Getenv("QAMIS_API_TOKEN")),
			Username:           strings.TrimSpace(os.Getenv("QAMIS_USERNAME")),
			Password:           os.Getenv("QAMIS_PASSWORD"),
			InspectionSyncCron: cronFromEnv("QAMIS_SYNC_CRON", "0 */30 * * * *"),
			SchoolSyncCron:     cronFromEnv("QAMIS_SCHOOL_SYNC_CRON", "0 15 * * * *"),
			HTTPTimeout:        time.Duration(intFromEnv("QAMIS_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		}
	})
	return qamisConf
}

func GetDHIS2Config() DHIS2Config {
	dhis2Once.Do(func() {
		dhis2Conf = DHIS2Config{
			APIURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("DHIS2_API_URL")), "/"),
			Username:       strings.TrimSpace(os.Getenv("DHIS2_USERNAME")),
			Password:       os.Getenv("DHIS2_PASSWORD"),
			ExportSyncCron: cronFromEnv("DHIS2_SYNC_CRON", "0 */30 * * * *"),
			// Daily at 01:00: inspections whose processing window opened
			// after yesterday's sweep get a deferred one-shot export.
			RescheduleCron: cronFromEnv("DHIS2_RESCHEDULE_CRON", "0 0 1 * * *"),
			HTTPTimeout:    time.Duration(intFromEnv("DHIS2_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		}
	})
	return dhis2Conf
}

func cronFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
