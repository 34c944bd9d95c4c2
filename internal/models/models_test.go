package models

import "testing"

func TestRunFilter(t *testing.T) {
	tc := []struct {
		name    string
		filter  RunFilter
		wantErr bool
	}{
		{name: "empty", filter: RunFilter{}},
		{name: "every field", filter: RunFilter{PlaylistID: "pl1", Status: RunFailed, Mode: ModeCollapse, Limit: 5}},
		{name: "unknown status", filter: RunFilter{Status: "archived"}, wantErr: true},
		{name: "unknown mode", filter: RunFilter{Mode: "shuffle"}, wantErr: true},
		{name: "negative limit", filter: RunFilter{Limit: -1}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRunStatus(t *testing.T) {
	for _, s := range []RunStatus{RunPending, RunRunning, RunCompleted, RunFailed, RunCancelled} {
		got, err := ParseRunStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseRunStatus(%q) = %q, %v", s, got, err)
		}
	}

	if _, err := ParseRunStatus("Completed"); err == nil {
		t.Error("expected statuses to be case-sensitive")
	}
}

func TestCleanupRunLifecycle(t *testing.T) {
	run := NewCleanupRun("pl1", ModeCollapse, []string{"a", "b"})
	if err := run.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status() != RunPending {
		t.Errorf("expected pending, got %s", run.Status())
	}

	run.Start()
	if run.Status() != RunRunning || run.StartedAt() == nil {
		t.Errorf("expected a started run, got %s", run.Status())
	}

	run.Finish(4, 2, nil, false)
	if run.Status() != RunCompleted || run.Removed() != 4 || run.Reinserted() != 2 || run.CompletedAt() == nil {
		t.Errorf("unexpected finished run: status=%s removed=%d reinserted=%d", run.Status(), run.Removed(), run.Reinserted())
	}

	run.SetStatus("archived", "")
	if err := run.Validate(); err == nil {
		t.Error("expected invalid status to fail validation")
	}
}
