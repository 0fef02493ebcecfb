package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	appcommon "github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/cmd/common"
	"github.com/evilive3000/apiless-upload/internal/studio"
)

func videoFromFlags(c *cli.Context) (studio.Video, error) {
	path := c.Args().First()
	if path == "" {
		return studio.Video{}, common.UsageError(c, "no video file provided")
	}
	if c.NArg() > 1 {
		return studio.Video{}, common.UsageError(c, "only one video can be uploaded at a time")
	}
	vis, err := studio.ParseVisibility(c.String("visibility"))
	if err != nil {
		return studio.Video{}, err
	}
	desc := c.String("description")
	if file := c.String("description-file"); file != "" {
		if desc != "" {
			return studio.Video{}, common.UsageError(c, "use either --description or --description-file")
		}
		data, err := afero.ReadFile(appFs, file)
		if err != nil {
			return studio.Video{}, appcommon.WrapError(appcommon.KindValidation, "upload", "could not read description", err).WithTarget(file)
		}
		desc = string(data)
	}
	return studio.Video{
		Path:          path,
		Title:         c.String("title"),
		Description:   desc,
		ThumbnailPath: c.String("thumbnail"),
		Monetization:  c.Bool("monetize"),
		Visibility:    vis,
	}, nil
}

func uploadCmd(ctx context.Context, c *cli.Context) error {
	if c.Args().First() == "help" {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}
	video, err := videoFromFlags(c)
	if err != nil {
		return err
	}
	// Validated here as well so that a bad descriptor fails before the
	// cookie store is opened.
	if err := video.Validate(appFs); err != nil {
		return err
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
	set, err := store.Load()
	if err != nil {
		return err
	}
	chrome, err := env.chrome(c, false)
	if err != nil {
		return err
	}

	up := studio.NewUploader(env.launcher(), env.log)
	up.FS = appFs
	up.Timing = uploadTiming()
	up.ExecPath = chrome

	sp := common.InitSpinner(stdout, "upload")
	err = up.Upload(ctx, video, set, studio.UploadOptions{
		Headless: c.BoolT("headless"),
		MaxWait:  c.Duration("max-wait"),
		OnProgress: func(line string) {
			sp.Update(line)
			env.log.Info("%s", line)
		},
	})
	sp.Stop()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Uploaded %s\n", video.Path)
	return nil
}
