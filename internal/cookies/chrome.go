package cookies

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Chrome timestamps count microseconds from 1601-01-01 UTC.
const chromeEpochOffsetSeconds int64 = 11_644_473_600

func chromeToUnix(usec int64) int64 {
	if usec == 0 {
		return 0
	}
	return usec/1_000_000 - chromeEpochOffsetSeconds
}

// chromeSameSite maps the samesite column (-1 unspecified, 0 none, 1 lax,
// 2 strict) onto the names a driver reports.
func chromeSameSite(v int) string {
	switch v {
	case 0:
		return "None"
	case 1:
		return "Lax"
	case 2:
		return "Strict"
	default:
		return ""
	}
}

// readChrome reads plaintext cookies from a copied Chrome "Cookies" database.
// Rows whose value only exists in encrypted_value are skipped and counted.
func readChrome(dbPath string, domains []string) (Set, int, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", dbPath))
	if err != nil {
		return nil, 0, fmt.Errorf("open chrome cookie database: %w", err)
	}
	defer db.Close()

	nowChrome := (time.Now().Unix() + chromeEpochOffsetSeconds) * 1_000_000
	rows, err := db.Query(`
        SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly, samesite
        FROM cookies
        WHERE expires_utc = 0 OR expires_utc > ?
        ORDER BY host_key ASC, path DESC, name ASC
    `, nowChrome)
	if err != nil {
		return nil, 0, fmt.Errorf("query chrome cookies: %w", err)
	}
	defer rows.Close()

	var (
		set       Set
		encrypted int
	)
	for rows.Next() {
		var (
			name, value, host, path string
			expires                 int64
			secure, httpOnly, same  int
		)
		if err := rows.Scan(&name, &value, &host, &path, &expires, &secure, &httpOnly, &same); err != nil {
			return nil, 0, fmt.Errorf("scan chrome cookie row: %w", err)
		}
		if len(domains) > 0 && !MatchesAny(host, domains) {
			continue
		}
		if value == "" {
			encrypted++
			continue
		}
		set = append(set, Cookie{
			Name:     name,
			Value:    value,
			Domain:   host,
			Path:     path,
			Expiry:   chromeToUnix(expires),
			Secure:   secure != 0,
			HTTPOnly: httpOnly != 0,
			SameSite: chromeSameSite(same),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate chrome cookie rows: %w", err)
	}
	return set, encrypted, nil
}
