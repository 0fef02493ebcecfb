package common

const (
	// AppName is used for the config directory and the keyring service.
	AppName = "ytupload"

	// ProfilePrefix names temporary browser profiles. Stale directories
	// carrying this prefix are swept at the start of every login.
	ProfilePrefix = "ytupload-profile-"

	// CookieFileName is the default cookie file inside the config dir.
	CookieFileName = "cookies.json"

	// VaultFileName is the encrypted cookie vault inside the config dir.
	VaultFileName = "cookies.vault"
)
