// Package common provides the constants, environment variable names and the
// error taxonomy shared by every ytupload component.
package common

// Environment variable names for configuration.
const (
	// ChromePathEnv overrides the Chrome executable used for both the
	// unmanaged login window and controlled sessions.
	ChromePathEnv = "YTUPLOAD_CHROME_PATH"

	// CookiesEnv is the default cookie file path for every command.
	CookiesEnv = "YTUPLOAD_COOKIES"

	// HeadlessEnv toggles headless controlled sessions for uploads.
	HeadlessEnv = "YTUPLOAD_HEADLESS"

	// LogFileEnv mirrors log output into the given file.
	LogFileEnv = "YTUPLOAD_LOG_FILE"

	// TempRootEnv overrides the directory temporary profiles are created in.
	TempRootEnv = "YTUPLOAD_TEMP_ROOT"

	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "YTUPLOAD_CONFIG_DIR"

	// DebugEnv enables chromedp protocol logging.
	DebugEnv = "YTUPLOAD_DEBUG"
)
