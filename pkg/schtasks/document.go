package schtasks

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	taskSchemaNS    = "http://schemas.microsoft.com/windows/2004/02/mit/task"
	taskXMLHeader   = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	taskVersion     = "1.2"
	executionCeil   = "PT72H" // bounded maximum run time for any task we create
	defaultPriority = 7
)

// The document mirrors the Task Scheduler 2.0 XML schema. Only the subset
// this system emits is modeled; the document is write-only (never read back).
type taskDocument struct {
	XMLName      xml.Name         `xml:"Task"`
	Version      string           `xml:"version,attr"`
	Namespace    string           `xml:"xmlns,attr"`
	Registration registrationInfo `xml:"RegistrationInfo"`
	Triggers     triggers         `xml:"Triggers"`
	Principals   principals       `xml:"Principals"`
	Settings     taskSettings     `xml:"Settings"`
	Actions      actions          `xml:"Actions"`
}

type registrationInfo struct {
	Date        string `xml:"Date"`
	Author      string `xml:"Author"`
	Description string `xml:"Description"`
}

type triggers struct {
	Time     *timeTrigger     `xml:"TimeTrigger,omitempty"`
	Calendar *calendarTrigger `xml:"CalendarTrigger,omitempty"`
	Logon    *logonTrigger    `xml:"LogonTrigger,omitempty"`
}

type timeTrigger struct {
	StartBoundary string      `xml:"StartBoundary"`
	Repetition    *repetition `xml:"Repetition,omitempty"`
	Enabled       bool        `xml:"Enabled"`
}

type repetition struct {
	Interval string `xml:"Interval"` // ISO-8601 duration, e.g. PT15M
}

type calendarTrigger struct {
	StartBoundary string        `xml:"StartBoundary"`
	Enabled       bool          `xml:"Enabled"`
	ScheduleByDay scheduleByDay `xml:"ScheduleByDay"`
}

type scheduleByDay struct {
	DaysInterval int `xml:"DaysInterval"`
}

type logonTrigger struct {
	Enabled bool `xml:"Enabled"`
}

type principals struct {
	Principal principal `xml:"Principal"`
}

type principal struct {
	ID        string `xml:"id,attr"`
	LogonType string `xml:"LogonType"`
	RunLevel  string `xml:"RunLevel"`
}

type taskSettings struct {
	MultipleInstancesPolicy    string       `xml:"MultipleInstancesPolicy"`
	DisallowStartIfOnBatteries bool         `xml:"DisallowStartIfOnBatteries"`
	StopIfGoingOnBatteries     bool         `xml:"StopIfGoingOnBatteries"`
	AllowHardTerminate         bool         `xml:"AllowHardTerminate"`
	StartWhenAvailable         bool         `xml:"StartWhenAvailable"`
	RunOnlyIfNetworkAvailable  bool         `xml:"RunOnlyIfNetworkAvailable"`
	IdleSettings               idleSettings `xml:"IdleSettings"`
	AllowStartOnDemand         bool         `xml:"AllowStartOnDemand"`
	Enabled                    bool         `xml:"Enabled"`
	Hidden                     bool         `xml:"Hidden"`
	RunOnlyIfIdle              bool         `xml:"RunOnlyIfIdle"`
	WakeToRun                  bool         `xml:"WakeToRun"`
	ExecutionTimeLimit         string       `xml:"ExecutionTimeLimit"`
	Priority                   int          `xml:"Priority"`
}

type idleSettings struct {
	StopOnIdleEnd bool `xml:"StopOnIdleEnd"`
	RestartOnIdle bool `xml:"RestartOnIdle"`
}

type actions struct {
	Context string     `xml:"Context,attr"`
	Exec    execAction `xml:"Exec"`
}

type execAction struct {
	Command          string `xml:"Command"`
	Arguments        string `xml:"Arguments"`
	WorkingDirectory string `xml:"WorkingDirectory"`
}

// buildDocument renders the task-definition XML for spec. The boundary and
// registration instant are passed in so the output is deterministic for a
// given input (tested property). The script must exist before anything is
// generated.
func buildDocument(spec Spec, executor, author string, boundary, registered time.Time) ([]byte, error) {
	script, err := filepath.Abs(spec.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, spec.ScriptPath)
	}
	if fi, err := os.Stat(script); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, script)
	}

	trg, err := buildTrigger(spec.Kind, spec.IntervalMinutes, boundary)
	if err != nil {
		return nil, err
	}

	desc := spec.Description
	if desc == "" {
		desc = "Auto-generated datalys2 task for " + filepath.Base(script)
	}

	doc := taskDocument{
		Version:   taskVersion,
		Namespace: taskSchemaNS,
		Registration: registrationInfo{
			Date:        registered.Format(startBoundaryLayout),
			Author:      author,
			Description: desc,
		},
		Triggers: trg,
		Principals: principals{Principal: principal{
			ID:        "Author",
			LogonType: "InteractiveToken",
			RunLevel:  "LeastPrivilege",
		}},
		// Fixed policy for every task this system creates; not caller-tunable.
		Settings: taskSettings{
			MultipleInstancesPolicy: "IgnoreNew",
			AllowHardTerminate:      true,
			StartWhenAvailable:      true,
			IdleSettings:            idleSettings{StopOnIdleEnd: true},
			AllowStartOnDemand:      true,
			Enabled:                 true,
			ExecutionTimeLimit:      executionCeil,
			Priority:                defaultPriority,
		},
		Actions: actions{
			Context: "Author",
			Exec: execAction{
				Command:          executor,
				Arguments:        buildArguments(script, spec.Args),
				WorkingDirectory: filepath.Dir(script),
			},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(taskXMLHeader), body...), nil
}

// buildTrigger maps a schedule kind to its trigger shape. Hourly and Minute
// get a repetition block on a time trigger; unknown kinds fire once at the
// boundary.
func buildTrigger(kind ScheduleKind, intervalMinutes int, boundary time.Time) (triggers, error) {
	sb := boundary.Format(startBoundaryLayout)
	switch kind {
	case Daily:
		return triggers{Calendar: &calendarTrigger{
			StartBoundary: sb,
			Enabled:       true,
			ScheduleByDay: scheduleByDay{DaysInterval: 1},
		}}, nil
	case OnLogon:
		return triggers{Logon: &logonTrigger{Enabled: true}}, nil
	case Hourly:
		return triggers{Time: &timeTrigger{
			StartBoundary: sb,
			Repetition:    &repetition{Interval: "PT1H"},
			Enabled:       true,
		}}, nil
	case Minute:
		if intervalMinutes <= 0 {
			return triggers{}, ErrInvalidInterval
		}
		return triggers{Time: &timeTrigger{
			StartBoundary: sb,
			Repetition:    &repetition{Interval: fmt.Sprintf("PT%dM", intervalMinutes)},
			Enabled:       true,
		}}, nil
	default:
		return triggers{Time: &timeTrigger{StartBoundary: sb, Enabled: true}}, nil
	}
}

// buildArguments reconstructs the command line handed to the executor: the
// quoted script path followed by each argument, quoting only values that
// contain whitespace.
func buildArguments(script string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, `"`+script+`"`)
	for _, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
