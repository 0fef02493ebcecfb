package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/urfave/cli"

	"github.com/evilive3000/apiless-upload/cmd/common"
)

// BuildArgs are stamped into the binary at link time.
type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// action adapts a command body to urfave/cli, handing it the signal
// aware context.
func action(ctx context.Context, fn func(context.Context, *cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		return fn(ctx, c)
	}
}

func newApp(ctx context.Context, bArgs BuildArgs) *cli.App {
	app := cli.NewApp()
	app.Name = "ytupload"
	app.HelpName = "ytupload"
	app.Usage = "Upload videos to YouTube Studio without the API."
	app.Version = fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType)
	app.UsageText = "ytupload <command> [arguments...]"
	app.Description = DESCRIPTION
	app.CustomAppHelpTemplate = HELP_TEMPL
	app.OnUsageError = common.UsageErrorCallback
	app.HideHelp = true
	app.HideVersion = true
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Commands = []cli.Command{
		{
			Name:               "login",
			Usage:              "sign in and save the session cookies",
			Description:        LoginDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             action(ctx, loginCmd),
			Flags:              loginFlags,
		},
		{
			Name:               "check",
			Usage:              "tell whether the saved cookies still work",
			Description:        CheckDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             action(ctx, checkCmd),
			Flags:              checkFlags,
		},
		{
			Name:                   "upload",
			Aliases:                []string{"u"},
			Usage:                  "upload and publish a video",
			UsageText:              "--title <title> [flags] <video file>",
			Description:            UploadDescription,
			CustomHelpTemplate:     CMD_HELP_TEMPL,
			OnUsageError:           common.UsageErrorCallback,
			Action:                 action(ctx, uploadCmd),
			Flags:                  uploadFlags,
			UseShortOptionHandling: true,
		},
		{
			Name:               "cookies",
			Usage:              "import, export, show or clear the saved session",
			Description:        CookiesDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Subcommands: []cli.Command{
				{
					Name:               "import",
					Usage:              "take cookies from a Chrome, Firefox or cookies.txt store",
					UsageText:          "[--domain d] [cookie store]",
					CustomHelpTemplate: CMD_HELP_TEMPL,
					OnUsageError:       common.UsageErrorCallback,
					Action:             action(ctx, cookiesImport),
					Flags:              importFlags,
				},
				{
					Name:               "export",
					Usage:              "write the session in Netscape cookies.txt format",
					CustomHelpTemplate: CMD_HELP_TEMPL,
					OnUsageError:       common.UsageErrorCallback,
					Action:             action(ctx, cookiesExport),
					Flags:              exportFlags,
				},
				{
					Name:               "show",
					Usage:              "list the saved cookies without their values",
					CustomHelpTemplate: CMD_HELP_TEMPL,
					OnUsageError:       common.UsageErrorCallback,
					Action:             action(ctx, cookiesShow),
					Flags:              showFlags,
				},
				{
					Name:               "clear",
					Usage:              "delete the saved session",
					CustomHelpTemplate: CMD_HELP_TEMPL,
					OnUsageError:       common.UsageErrorCallback,
					Action:             action(ctx, cookiesClear),
					Flags:              clearFlags,
				},
			},
		},
		{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "prints the help message",
			Action:  common.Help,
		},
		{
			Name:               "version",
			Aliases:            []string{"v"},
			Usage:              "prints the installed version",
			UsageText:          " ",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             common.GetVersion,
		},
	}
	app.Action = common.Help
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app
}

// Execute runs the CLI. Ctrl-C cancels the running command, which closes
// its browser and removes temporary profiles on the way out.
func Execute(args []string, bArgs BuildArgs) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newApp(ctx, bArgs).Run(args)
}

// ExitCode is the process status for an error returned by Execute.
func ExitCode(err error) int {
	return common.ExitCode(err)
}
