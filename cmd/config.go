package cmd

const DESCRIPTION = `
ytupload uploads videos to YouTube Studio by driving a real Chrome
window. There is no API key involved: you sign in once, the session
cookies are kept on disk (or in an encrypted vault) and every upload
replays them into a fresh browser.
`

const (
	LoginDescription = `The login command opens an ordinary Chrome window on YouTube
Studio. Sign in there; once the studio dashboard shows up the window
is closed, the profile is reopened and you pick the channel to use.
The captured cookies are then saved.

Example:
        ytupload login
        ytupload login --vault

`
	CheckDescription = `The check command opens the studio headless with the saved
cookies and reports whether they still sign you in.

Example:
        ytupload check

`
	UploadDescription = `The upload command publishes a video through the studio upload
wizard and prints the wizard's progress as it goes.

Example:
        ytupload upload --title "Launch day" clip.mp4
        ytupload upload -t "Draft" --visibility private --thumbnail thumb.png clip.mp4

`
	CookiesDescription = `The cookies command manages the saved session. Without a path,
import reads the first installed browser's default profile.

Example:
        ytupload cookies import
        ytupload cookies import ~/.config/google-chrome/Default/Cookies
        ytupload cookies export --netscape cookies.txt
        ytupload cookies show

`
)
