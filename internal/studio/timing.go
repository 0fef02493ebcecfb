package studio

import "time"

// Timing holds the wizard's delays and bounds. Zero delays skip the wait;
// zero bounds and poll intervals fall back to DefaultTiming.
type Timing struct {
	// fixed delays
	StudioSettle     time.Duration
	EditorSettle     time.Duration
	TypeDelay        time.Duration
	FieldSettle      time.Duration
	ThumbnailSettle  time.Duration
	AudienceSettle   time.Duration
	MonetizationStep time.Duration
	DoneSettle       time.Duration
	PrecheckSettle   time.Duration

	// bounds
	FileInputWait time.Duration
	EditorWait    time.Duration
	PrivacyWait   time.Duration
	ElementWait   time.Duration

	// poll intervals
	WaitPoll      time.Duration
	ProgressPoll  time.Duration
	SuppressEvery time.Duration
}

// DefaultTiming returns the delays and bounds tuned against the live studio.
func DefaultTiming() Timing {
	return Timing{
		StudioSettle:     time.Second,
		EditorSettle:     10 * time.Second,
		TypeDelay:        500 * time.Millisecond,
		FieldSettle:      time.Second,
		ThumbnailSettle:  5 * time.Second,
		AudienceSettle:   time.Second,
		MonetizationStep: 500 * time.Millisecond,
		DoneSettle:       2 * time.Second,
		PrecheckSettle:   time.Second,

		FileInputWait: 10 * time.Second,
		EditorWait:    50 * time.Second,
		PrivacyWait:   10 * time.Second,
		ElementWait:   5 * time.Second,

		WaitPoll:      250 * time.Millisecond,
		ProgressPoll:  4 * time.Second,
		SuppressEvery: 500 * time.Millisecond,
	}
}

func orDefault(v, d time.Duration) time.Duration {
	if v <= 0 {
		return d
	}
	return v
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	t.FileInputWait = orDefault(t.FileInputWait, d.FileInputWait)
	t.EditorWait = orDefault(t.EditorWait, d.EditorWait)
	t.PrivacyWait = orDefault(t.PrivacyWait, d.PrivacyWait)
	t.ElementWait = orDefault(t.ElementWait, d.ElementWait)
	t.WaitPoll = orDefault(t.WaitPoll, d.WaitPoll)
	t.ProgressPoll = orDefault(t.ProgressPoll, d.ProgressPoll)
	t.SuppressEvery = orDefault(t.SuppressEvery, d.SuppressEvery)
	return t
}
