package cookies

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Firefox sameSite column: 0 none, 1 lax, 2 strict.
var firefoxSameSite = map[int]string{0: "None", 1: "Lax", 2: "Strict"}

// readFirefox reads unexpired cookies from a copied cookies.sqlite.
func readFirefox(dbPath string, domains []string) (Set, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open firefox cookie database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
        SELECT name, value, host, path, expiry, isSecure, isHttpOnly, sameSite
        FROM moz_cookies
        WHERE expiry > ?
        ORDER BY host ASC, path DESC, name ASC
    `, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("query firefox cookies: %w", err)
	}
	defer rows.Close()

	var set Set
	for rows.Next() {
		var (
			name, value, host, path string
			expiry                  int64
			secure, httpOnly, same  int
		)
		if err := rows.Scan(&name, &value, &host, &path, &expiry, &secure, &httpOnly, &same); err != nil {
			return nil, fmt.Errorf("scan firefox cookie row: %w", err)
		}
		if len(domains) > 0 && !MatchesAny(host, domains) {
			continue
		}
		set = append(set, Cookie{
			Name:     name,
			Value:    value,
			Domain:   host,
			Path:     path,
			Expiry:   expiry,
			Secure:   secure != 0,
			HTTPOnly: httpOnly != 0,
			SameSite: firefoxSameSite[same],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firefox cookie rows: %w", err)
	}
	return set, nil
}
