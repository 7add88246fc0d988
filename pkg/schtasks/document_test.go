package schtasks

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.py")
	if err := os.WriteFile(path, []byte("print('ok')\n"), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

var testBoundary = time.Date(2026, 8, 28, 2, 0, 0, 0, time.Local)

func TestBuildDocumentDeterministic(t *testing.T) {
	t.Parallel()
	spec := Spec{Name: "nightly", ScriptPath: writeScript(t), Kind: Daily, Args: []string{"--mode", "full sync"}}
	reg := time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local)

	a, err := buildDocument(spec, `C:\python\python.exe`, "tester", testBoundary, reg)
	if err != nil {
		t.Fatalf("buildDocument: %v", err)
	}
	b, err := buildDocument(spec, `C:\python\python.exe`, "tester", testBoundary, reg)
	if err != nil {
		t.Fatalf("buildDocument: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two builds from identical inputs differ")
	}
}

func TestBuildDocumentTriggerShapes(t *testing.T) {
	t.Parallel()
	script := writeScript(t)
	reg := time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		kind     ScheduleKind
		interval int
		contains []string
		excludes []string
	}{
		{name: "once", kind: Once,
			contains: []string{"<TimeTrigger>", "<StartBoundary>2026-08-28T02:00:00</StartBoundary>"},
			excludes: []string{"<Repetition>", "<CalendarTrigger>"}},
		{name: "daily", kind: Daily,
			contains: []string{"<CalendarTrigger>", "<DaysInterval>1</DaysInterval>"},
			excludes: []string{"<TimeTrigger>"}},
		{name: "onlogon", kind: OnLogon,
			contains: []string{"<LogonTrigger>"},
			excludes: []string{"<StartBoundary>"}},
		{name: "hourly", kind: Hourly,
			contains: []string{"<TimeTrigger>", "<Interval>PT1H</Interval>"}},
		{name: "minute", kind: Minute, interval: 15,
			contains: []string{"<Interval>PT15M</Interval>"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := Spec{Name: "job", ScriptPath: script, Kind: tt.kind, IntervalMinutes: tt.interval}
			doc, err := buildDocument(spec, "exe", "tester", testBoundary, reg)
			if err != nil {
				t.Fatalf("buildDocument: %v", err)
			}
			s := string(doc)
			for _, want := range tt.contains {
				if !strings.Contains(s, want) {
					t.Fatalf("document missing %q:\n%s", want, s)
				}
			}
			for _, not := range tt.excludes {
				if strings.Contains(s, not) {
					t.Fatalf("document should not contain %q:\n%s", not, s)
				}
			}
		})
	}
}

func TestBuildDocumentFixedSettings(t *testing.T) {
	t.Parallel()
	spec := Spec{Name: "job", ScriptPath: writeScript(t), Kind: Once}
	doc, err := buildDocument(spec, "exe", "tester", testBoundary, testBoundary)
	if err != nil {
		t.Fatalf("buildDocument: %v", err)
	}
	s := string(doc)
	for _, want := range []string{
		"<MultipleInstancesPolicy>IgnoreNew</MultipleInstancesPolicy>",
		"<AllowHardTerminate>true</AllowHardTerminate>",
		"<AllowStartOnDemand>true</AllowStartOnDemand>",
		"<ExecutionTimeLimit>PT72H</ExecutionTimeLimit>",
		"<Hidden>false</Hidden>",
		"<RunLevel>LeastPrivilege</RunLevel>",
		"<LogonType>InteractiveToken</LogonType>",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("document missing fixed setting %q", want)
		}
	}
}

func TestBuildDocumentAction(t *testing.T) {
	t.Parallel()
	script := writeScript(t)
	spec := Spec{Name: "job", ScriptPath: script, Kind: Once, Args: []string{"plain", "has space"}}
	doc, err := buildDocument(spec, `C:\python\python.exe`, "tester", testBoundary, testBoundary)
	if err != nil {
		t.Fatalf("buildDocument: %v", err)
	}
	s := string(doc)
	// encoding/xml escapes quotes inside character data.
	wantArgs := "&#34;" + script + "&#34; plain &#34;has space&#34;"
	if !strings.Contains(s, wantArgs) {
		t.Fatalf("arguments not built as expected, want %q in:\n%s", wantArgs, s)
	}
	if !strings.Contains(s, "<WorkingDirectory>"+filepath.Dir(script)+"</WorkingDirectory>") {
		t.Fatalf("working directory should be the script's parent:\n%s", s)
	}
	if !strings.Contains(s, `<Command>C:\python\python.exe</Command>`) {
		t.Fatalf("command should be the executor path:\n%s", s)
	}
}

func TestBuildDocumentValidation(t *testing.T) {
	t.Parallel()

	missing := Spec{Name: "job", ScriptPath: filepath.Join(t.TempDir(), "nope.py"), Kind: Once}
	if _, err := buildDocument(missing, "exe", "tester", testBoundary, testBoundary); !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("missing script: got %v, want ErrScriptNotFound", err)
	}

	noInterval := Spec{Name: "job", ScriptPath: writeScript(t), Kind: Minute}
	if _, err := buildDocument(noInterval, "exe", "tester", testBoundary, testBoundary); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("minute without interval: got %v, want ErrInvalidInterval", err)
	}
}
