package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"

	appcommon "github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/cmd/common"
	"github.com/evilive3000/apiless-upload/internal/cookies"
)

func cookiesImport(ctx context.Context, c *cli.Context) error {
	if c.NArg() > 1 {
		return common.UsageError(c, "only one cookie store can be imported at a time")
	}
	env, err := newEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	src := c.Args().First()
	domains := c.StringSlice("domain")
	var res *cookies.ImportResult
	if src == "" {
		res, err = importFromBrowser(appFs, domains...)
		if err != nil {
			return appcommon.WrapError(appcommon.KindValidation, "import", "could not import from an installed browser, pass a cookie store path", err)
		}
		src = res.Source.Path
	} else {
		res, err = cookies.Import(appFs, src, domains...)
		if err != nil {
			return appcommon.WrapError(appcommon.KindValidation, "import", "could not import cookies", err).WithTarget(src)
		}
	}
	if res.Skipped > 0 {
		env.log.Warning("skipped %d unusable cookies in %s", res.Skipped, src)
	}
	if len(res.Set) == 0 {
		return appcommon.NewError(appcommon.KindValidation, "import", "no usable cookies found").WithTarget(src)
	}
	if err := store.Save(res.Set); err != nil {
		return err
	}
	from := res.Source.Format.String() + " store"
	if res.Source.Browser != "" {
		from = fmt.Sprintf("%s (%s)", res.Source.Browser, src)
	}
	fmt.Fprintf(stdout, "Imported %d cookies from %s into %s\n", len(res.Set), from, store)
	return nil
}

func cookiesExport(ctx context.Context, c *cli.Context) error {
	env, err := newEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	set, err := store.Load()
	if err != nil {
		return err
	}

	out := c.String("netscape")
	if out == "" || out == "-" {
		return writeNetscape(stdout, set)
	}
	f, err := appFs.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return appcommon.WrapError(appcommon.KindEnvironment, "export", "could not create file", err).WithTarget(out)
	}
	if err := writeNetscape(f, set); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return appcommon.WrapError(appcommon.KindEnvironment, "export", "could not write file", err).WithTarget(out)
	}
	env.log.Info("exported %d cookies to %s", len(set), out)
	return nil
}

func writeNetscape(w io.Writer, set cookies.Set) error {
	if err := cookies.WriteNetscape(w, set); err != nil {
		return appcommon.WrapError(appcommon.KindEnvironment, "export", "could not write cookies", err)
	}
	return nil
}

const (
	nameW   = 28
	domainW = 24
	expiryW = 20
)

func cookiesShow(ctx context.Context, c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	set, err := store.Load()
	if err != nil {
		return err
	}
	printCookieTable(stdout, set, time.Now())
	fmt.Fprintf(stdout, "\n%d cookies in %s\n", len(set), store)
	return nil
}

func printCookieTable(w io.Writer, set cookies.Set, now time.Time) {
	line := "|" + strings.Repeat("-", nameW) + "|" + strings.Repeat("-", domainW) + "|" + strings.Repeat("-", expiryW) + "|--------|"
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "|%s|%s|%s|%s|\n",
		common.Beaut("Name", nameW), common.Beaut("Domain", domainW), common.Beaut("Expires", expiryW), common.Beaut("Flags", 8))
	fmt.Fprintln(w, line)
	for _, ck := range set {
		expiry := "session"
		if !ck.IsSession() {
			expiry = time.Unix(ck.Expiry, 0).UTC().Format("2006-01-02 15:04")
			if ck.Expired(now) {
				expiry += " !"
			}
		}
		var fl []string
		if ck.Secure {
			fl = append(fl, "S")
		}
		if ck.HTTPOnly {
			fl = append(fl, "H")
		}
		fmt.Fprintf(w, "| %-*s| %-*s| %-*s| %-7s|\n",
			nameW-1, clip(ck.Name, nameW-2), domainW-1, clip(ck.Domain, domainW-2),
			expiryW-1, expiry, strings.Join(fl, ""))
	}
	fmt.Fprintln(w, line)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}

func cookiesClear(ctx context.Context, c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Removed %s\n", store)
	return nil
}
