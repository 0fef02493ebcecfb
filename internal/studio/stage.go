package studio

// Stage is a step of the upload wizard.
type Stage int

const (
	StageCookies Stage = iota + 1
	StageStudio
	StageFile
	StageMetadata
	StageThumbnail
	StageAudience
	StageMonetization
	StageVisibility
	StagePublish
	StageConfirm
)

var stageNames = map[Stage]string{
	StageCookies:      "cookie injection",
	StageStudio:       "studio entry",
	StageFile:         "file selection",
	StageMetadata:     "metadata",
	StageThumbnail:    "thumbnail",
	StageAudience:     "audience",
	StageMonetization: "monetization",
	StageVisibility:   "visibility",
	StagePublish:      "publish",
	StageConfirm:      "confirmation",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "unknown stage"
}
