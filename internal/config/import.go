package config

import (
	"strings"
	"time"
)

// ImportConfig holds the knobs of the reservation importer.
//
//	IMPORT_SOURCE          – default source system URI when a request names none
//	IMPORT_FEE_KEYWORDS    – comma separated labels that turn manual lines into fees
//	IMPORT_LOCK_TTL        – lifetime of the per-reservation Redis lock
//	IMPORT_LOCK_WAIT       – how long an importer waits for a held lock
//	IMPORT_LOCK_RETRY      – poll interval while waiting
//	IMPORT_QUEUE           – queue consumed for import requests
//	IMPORTED_QUEUE         – queue booking.imported events are published to
//	MIGRATIONS_PATH        – directory of SQL migrations applied at startup (empty disables)
type ImportConfig struct {
	Source         string
	FeeKeywords    []string
	LockTTL        time.Duration
	LockWait       time.Duration
	LockRetry      time.Duration
	ImportQueue    string
	ImportedQueue  string
	MigrationsPath string
}

// LoadImportConfig reads ImportConfig from the environment, falling back
// to defaults for unset variables.
func LoadImportConfig() ImportConfig {
	cfg := ImportConfig{
		Source:         envStr("IMPORT_SOURCE", ""),
		FeeKeywords:    splitList(envStr("IMPORT_FEE_KEYWORDS", "fee")),
		LockTTL:        envDur("IMPORT_LOCK_TTL", 30*time.Second),
		LockWait:       envDur("IMPORT_LOCK_WAIT", 10*time.Second),
		LockRetry:      envDur("IMPORT_LOCK_RETRY", 100*time.Millisecond),
		ImportQueue:    envStr("IMPORT_QUEUE", "reservation.import"),
		ImportedQueue:  envStr("IMPORTED_QUEUE", "booking.imported"),
		MigrationsPath: envStr("MIGRATIONS_PATH", ""),
	}
	if cfg.LockRetry <= 0 {
		cfg.LockRetry = 100 * time.Millisecond
	}
	// the lock must outlive a wait for it
	if cfg.LockTTL < cfg.LockWait {
		cfg.LockTTL = cfg.LockWait
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
