package studio

// Wizard element selectors. They track the studio's current markup; a
// redesign that renames them shows up as element timeouts.
const (
	selAuthDialog    = "ytcp-auth-confirmation-dialog"
	selUploadIcon    = "#upload-icon"
	selFileInput     = "input[type=file]"
	selTextbox       = "#textbox"
	selThumbnail     = "#file-loader"
	selNotForKids    = "[name=NOT_MADE_FOR_KIDS]"
	selMonetizeTab   = "button[test-id=MONETIZATION]"
	selMonetizeOpen  = "ytcp-icon-button[class~=ytcp-video-monetization]"
	selMonetizeOff   = "paper-radio-button[id=radio-off][class~=ytcp-video-monetization-edit-dialog]"
	selMonetizeOn    = "paper-radio-button[id=radio-on][class~=ytcp-video-monetization-edit-dialog]"
	selMonetizeSave  = "ytcp-button[id=save-button][class~=ytcp-video-monetization-edit-dialog]"
	selBackdrop      = "iron-overlay-backdrop[opened]"
	selReviewTab     = "button[test-id=REVIEW]"
	selPrivacyGroup  = "#privacy-radios"
	selPrivacyRadio  = "#privacy-radios > paper-radio-button"
	selProgressLabel = "ytcp-video-upload-progress > .progress-label"
	selDone          = "#done-button"
	selPrecheckPub   = "ytcp-button[id=publish-button][class~=ytcp-prechecks-warning-dialog]"
)
