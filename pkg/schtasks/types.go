package schtasks

import (
	"fmt"
	"strings"
)

// ScheduleKind selects the trigger template for a task.
type ScheduleKind string

const (
	Once    ScheduleKind = "ONCE"
	Daily   ScheduleKind = "DAILY"
	Hourly  ScheduleKind = "HOURLY"
	Minute  ScheduleKind = "MINUTE"
	OnLogon ScheduleKind = "ONLOGON"
)

// ParseScheduleKind normalizes a user-supplied schedule name.
func ParseScheduleKind(raw string) (ScheduleKind, error) {
	switch k := ScheduleKind(strings.ToUpper(strings.TrimSpace(raw))); k {
	case Once, Daily, Hourly, Minute, OnLogon:
		return k, nil
	default:
		return "", fmt.Errorf("unknown schedule kind %q", raw)
	}
}

// Spec describes one task to register. It is transient: built by the caller,
// consumed by a single Create/Ensure call.
type Spec struct {
	// Name is the logical identifier, unqualified unless the caller already
	// supplied a rooted \folder\name path.
	Name string

	// ScriptPath is the program the task runs. It must exist at creation time.
	ScriptPath string

	Kind ScheduleKind

	// StartTime is an optional 24h "HH:MM" wall-clock time.
	StartTime string

	// IntervalMinutes sets the repetition interval for Minute schedules.
	IntervalMinutes int

	// Args are passed to the script after its path; values containing
	// whitespace are individually quoted when the command line is built.
	Args []string

	// Force overwrites an existing task with the same qualified name.
	Force bool

	// Description is free-form registration metadata. Empty gets a default.
	Description string
}
