package studio

import (
	"testing"
	"time"
)

func TestClassifyProgress(t *testing.T) {
	tests := []struct {
		text string
		want ProgressState
	}{
		{"Uploading 57% ... 2 minutes left", InProgress},
		{"Uploading..", InProgress},
		{"Uploading 100% ...", InProgress},
		{"Upload complete ... Processing will begin shortly", Complete},
		{"Finished processing", Complete},
		{"Processing HD version, SD complete", Complete},
		{"", InProgress},
	}
	for _, tt := range tests {
		if got := ClassifyProgress(tt.text); got != tt.want {
			t.Errorf("ClassifyProgress(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	in := "Uploading&nbsp;5% ...&nbsp2 minutes left"
	if got := normalizeLabel(in); got != "Uploading 5% ... 2 minutes left" {
		t.Errorf("normalizeLabel = %q", got)
	}
}

func TestStageString(t *testing.T) {
	if StageCookies.String() != "cookie injection" || StageConfirm.String() != "confirmation" {
		t.Error("unexpected stage names")
	}
	if Stage(99).String() != "unknown stage" {
		t.Error("unexpected name for an unknown stage")
	}
}

func TestTimingDefaults(t *testing.T) {
	tm := Timing{}.withDefaults()
	if tm.EditorSettle != 0 || tm.StudioSettle != 0 {
		t.Error("zero delays must stay zero")
	}
	if tm.EditorWait != 50*time.Second || tm.ProgressPoll != 4*time.Second || tm.SuppressEvery != 500*time.Millisecond {
		t.Errorf("bounds and intervals should default, got %+v", tm)
	}
}
