package cmd

import (
	"time"

	"github.com/urfave/cli"

	"github.com/evilive3000/apiless-upload/common"
)

var (
	chromeFlag = cli.StringFlag{
		Name:   "chrome",
		Usage:  "path to the Chrome executable (default: auto-detect)",
		EnvVar: common.ChromePathEnv,
	}
	logFileFlag = cli.StringFlag{
		Name:   "log-file",
		Usage:  "also write the log to this file",
		EnvVar: common.LogFileEnv,
	}
	debugFlag = cli.BoolFlag{
		Name:   "debug",
		Usage:  "log every step and DevTools message",
		EnvVar: common.DebugEnv,
	}
	cookiesFlag = cli.StringFlag{
		Name:   "cookies, c",
		Usage:  "cookie file (default: <config dir>/cookies.json)",
		EnvVar: common.CookiesEnv,
	}
	vaultFlag = cli.BoolFlag{
		Name:  "vault",
		Usage: "keep cookies in an encrypted vault keyed from the OS keyring",
	}

	ambientFlags = []cli.Flag{chromeFlag, logFileFlag, debugFlag}
	storeFlags   = []cli.Flag{cookiesFlag, vaultFlag}

	loginFlags = flags(ambientFlags, storeFlags,
		cli.StringFlag{
			Name:   "temp-root",
			Usage:  "directory for the temporary browser profile",
			EnvVar: common.TempRootEnv,
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "how long to wait for the sign-in",
			Value: 10 * time.Minute,
		},
	)

	checkFlags = flags(ambientFlags, storeFlags)

	uploadFlags = flags(ambientFlags, storeFlags,
		cli.StringFlag{
			Name:  "title, t",
			Usage: "video title (required, at most 100 characters)",
		},
		cli.StringFlag{
			Name:  "description, d",
			Usage: "video description (at most 5000 characters)",
		},
		cli.StringFlag{
			Name:  "description-file",
			Usage: "read the description from a file",
		},
		cli.StringFlag{
			Name:  "thumbnail",
			Usage: "custom thumbnail image",
		},
		cli.StringFlag{
			Name:  "visibility",
			Usage: "private, unlisted or public",
			Value: "public",
		},
		cli.BoolFlag{
			Name:  "monetize",
			Usage: "turn monetization on where the channel supports it",
		},
		cli.BoolTFlag{
			Name:   "headless",
			Usage:  "run the browser without a window (use --headless=false to watch)",
			EnvVar: common.HeadlessEnv,
		},
		cli.DurationFlag{
			Name:  "max-wait",
			Usage: "give up when the transfer takes longer than this",
			Value: 2 * time.Hour,
		},
	)

	importFlags = flags(ambientFlags, storeFlags,
		cli.StringSliceFlag{
			Name:  "domain",
			Usage: "keep cookies for this domain (repeatable, default: youtube.com and google.com)",
		},
	)

	exportFlags = flags(ambientFlags, storeFlags,
		cli.StringFlag{
			Name:  "netscape, o",
			Usage: `output file in Netscape format, "-" for stdout`,
			Value: "-",
		},
	)

	showFlags  = flags(ambientFlags, storeFlags)
	clearFlags = flags(ambientFlags, storeFlags)
)

func flags(base, more []cli.Flag, extra ...cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0, len(base)+len(more)+len(extra))
	out = append(out, base...)
	out = append(out, more...)
	return append(out, extra...)
}
