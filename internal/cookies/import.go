package cookies

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// ImportResult is what Import found in a store.
type ImportResult struct {
	Source Source
	Set    Set
	// Skipped counts unusable rows: malformed Netscape lines or Chrome
	// rows whose value is only available encrypted.
	Skipped int
}

// Import reads the cookie store at path, whatever its format, and keeps
// the cookies for domains (DefaultDomains when none are given). Text stores
// are read through fs; browser databases are snapshotted from disk.
func Import(fs afero.Fs, path string, domains ...string) (*ImportResult, error) {
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	format, err := DetectFormat(fs, path)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Source: Source{Path: path, Format: format}}

	switch format {
	case FormatChrome:
		err = withSnapshot(path, func(copied string) error {
			var e error
			res.Set, res.Skipped, e = readChrome(copied, domains)
			return e
		})
	case FormatFirefox:
		err = withSnapshot(path, func(copied string) error {
			var e error
			res.Set, e = readFirefox(copied, domains)
			return e
		})
	case FormatNetscape:
		var f afero.File
		f, err = fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open cookie store: %w", err)
		}
		res.Set, res.Skipped, err = ReadNetscape(f, domains)
		f.Close()
	case FormatJSON:
		var data []byte
		data, err = afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("read cookie store: %w", err)
		}
		var set Set
		if err = json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("decode cookie store %s: %w", path, err)
		}
		res.Set = set.Filter(domains...)
	default:
		return nil, fmt.Errorf("unsupported cookie store format at %s", path)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
