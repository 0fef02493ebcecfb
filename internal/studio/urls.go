package studio

import "strings"

// Site entry points.
const (
	GoogleURL        = "https://www.google.com/"
	HomeURL          = "https://www.youtube.com/"
	StudioURL        = "https://studio.youtube.com/"
	AccountSelectURL = "https://www.youtube.com/signin?action_prompt_identity=true"
	// LoaderURL is a neutral, fast page opened first so the profile's
	// stored session is loaded before the site is visited.
	LoaderURL = "https://www.portofastoria.com/pleasewait.htm"
)

// InStudio reports whether loc is inside the studio.
func InStudio(loc string) bool {
	return strings.HasPrefix(loc, StudioURL)
}
