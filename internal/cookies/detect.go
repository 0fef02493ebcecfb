package cookies

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// DetectFormat sniffs the store at path on fs: SQLite databases are told
// apart by their cookie table, text files by the Netscape header or a
// leading '['. The SQLite driver only reads real files, so a database is
// always inspected on disk.
func DetectFormat(fs afero.Fs, path string) (Format, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("cookie store not found: %s", path)
	}
	if info.IsDir() {
		return FormatUnknown, fmt.Errorf("%s is a directory, expected a cookie store file", path)
	}
	if info.Size() == 0 {
		return FormatUnknown, fmt.Errorf("cookie store %s is empty", path)
	}

	f, err := fs.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("open cookie store: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return FormatUnknown, fmt.Errorf("read cookie store: %w", err)
	}
	head = head[:n]

	if bytes.HasPrefix(head, sqliteMagic) {
		return detectSQLiteFormat(path)
	}

	trimmed := bytes.TrimLeft(head, " \t\r\n\uFEFF")
	if bytes.HasPrefix(trimmed, []byte("[")) {
		return FormatJSON, nil
	}
	first := trimmed
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	first = bytes.TrimRight(first, "\r")
	switch string(first) {
	case netscapeHeader, "# HTTP Cookie File":
		return FormatNetscape, nil
	}
	return FormatUnknown, fmt.Errorf("unsupported cookie store format at %s", path)
}

func detectSQLiteFormat(path string) (Format, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return FormatUnknown, fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('moz_cookies', 'cookies')`)
	if err != nil {
		return FormatUnknown, fmt.Errorf("inspect sqlite schema: %w", err)
	}
	defer rows.Close()

	found := FormatUnknown
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return FormatUnknown, fmt.Errorf("inspect sqlite schema: %w", err)
		}
		if name == "moz_cookies" {
			return FormatFirefox, nil
		}
		found = FormatChrome
	}
	if found == FormatUnknown {
		return FormatUnknown, fmt.Errorf("unsupported cookie database schema at %s", path)
	}
	return found, nil
}
