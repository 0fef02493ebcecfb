package cookies

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	netscapeHeader = "# Netscape HTTP Cookie File"
	httpOnlyPrefix = "#HttpOnly_"
)

// ReadNetscape parses the tab separated cookies.txt format used by curl and
// yt-dlp, keeping cookies for domains that are not expired. Lines that do
// not have seven fields are counted in skipped and otherwise ignored.
func ReadNetscape(r io.Reader, domains []string) (set Set, skipped int, err error) {
	now := time.Now()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			skipped++
			continue
		}
		var expiry int64
		if fields[4] != "" {
			expiry, err = strconv.ParseInt(fields[4], 10, 64)
			if err != nil {
				skipped++
				continue
			}
		}
		c := Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Expiry:   expiry,
			Name:     fields[5],
			Value:    fields[6],
			HTTPOnly: httpOnly,
		}
		if len(domains) > 0 && !MatchesAny(c.Domain, domains) {
			continue
		}
		if c.Expired(now) {
			continue
		}
		set = append(set, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read netscape cookies: %w", err)
	}
	return set, skipped, nil
}

// WriteNetscape writes set in the cookies.txt format. Session cookies get
// a zero expiry column, which curl and yt-dlp treat as "no expiry".
func WriteNetscape(w io.Writer, set Set) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, netscapeHeader)
	fmt.Fprintln(bw, "# Exported by ytupload. Keep this file private.")
	fmt.Fprintln(bw)
	for _, c := range set {
		domain := c.Domain
		if c.HTTPOnly {
			domain = httpOnlyPrefix + domain
		}
		includeSub := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSub = "TRUE"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		expiry := c.Expiry
		if expiry < 0 {
			expiry = 0
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, includeSub, path, boolField(c.Secure), expiry, c.Name, c.Value)
	}
	return bw.Flush()
}

func boolField(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
