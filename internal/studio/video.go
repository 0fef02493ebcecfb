package studio

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/evilive3000/apiless-upload/common"
)

// Limits of the studio editor, in characters.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 5000
)

// Visibility is who can watch the published video.
type Visibility string

const (
	Private  Visibility = "private"
	Unlisted Visibility = "unlisted"
	Public   Visibility = "public"
)

// ParseVisibility accepts the names case-insensitively. An empty string
// is Public.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return Public, nil
	}
	if _, err := v.radioIndex(); err != nil {
		return "", invalidVisibility(v)
	}
	return v, nil
}

// radioIndex is the position of v's radio button in the privacy group.
func (v Visibility) radioIndex() (int, error) {
	switch v {
	case Private:
		return 0, nil
	case Unlisted:
		return 1, nil
	case Public:
		return 2, nil
	}
	return -1, common.NewError(common.KindProgramming, "visibility", fmt.Sprintf("unrecognized visibility %q", string(v)))
}

func invalidVisibility(v Visibility) error {
	_, cause := v.radioIndex()
	return common.WrapError(common.KindValidation, "video",
		fmt.Sprintf("visibility %q is not one of private, unlisted or public", string(v)), cause)
}

// Video describes one upload.
type Video struct {
	Path          string
	Title         string
	Description   string
	ThumbnailPath string
	Monetization  bool
	// Visibility defaults to Public when empty.
	Visibility Visibility
}

func invalid(format string, args ...interface{}) error {
	return common.NewError(common.KindValidation, "video", fmt.Sprintf(format, args...))
}

// Validate checks v without touching a browser. Paths are resolved
// against fs.
func (v Video) Validate(fs afero.Fs) error {
	if v.Path == "" {
		return invalid("missing video path")
	}
	if v.Title == "" {
		return invalid("missing title")
	}
	if n := utf8.RuneCountInString(v.Title); n > MaxTitleLen {
		return invalid("title is %d characters, the limit is %d", n, MaxTitleLen)
	}
	if n := utf8.RuneCountInString(v.Description); n > MaxDescriptionLen {
		return invalid("description is %d characters, the limit is %d", n, MaxDescriptionLen)
	}
	if v.Visibility != "" {
		if _, err := v.Visibility.radioIndex(); err != nil {
			return invalidVisibility(v.Visibility)
		}
	}
	if err := mustExist(fs, v.Path); err != nil {
		return invalid("video file %s: %v", v.Path, err)
	}
	if v.ThumbnailPath != "" {
		if err := mustExist(fs, v.ThumbnailPath); err != nil {
			return invalid("thumbnail %s: %v", v.ThumbnailPath, err)
		}
	}
	return nil
}

func mustExist(fs afero.Fs, path string) error {
	fi, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("does not exist")
	}
	if fi.IsDir() {
		return fmt.Errorf("is a directory")
	}
	return nil
}

var absPath = filepath.Abs

// withDefaults fills the visibility and makes the file paths absolute. The
// browser resolves a relative path against its own working directory, not
// ours.
func (v Video) withDefaults() (Video, error) {
	if v.Visibility == "" {
		v.Visibility = Public
	}
	var err error
	if v.Path, err = absPath(v.Path); err != nil {
		return v, invalid("video file %s: %v", v.Path, err)
	}
	if v.ThumbnailPath != "" {
		if v.ThumbnailPath, err = absPath(v.ThumbnailPath); err != nil {
			return v, invalid("thumbnail %s: %v", v.ThumbnailPath, err)
		}
	}
	return v, nil
}
