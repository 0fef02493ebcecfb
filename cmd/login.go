package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	appcommon "github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/cmd/common"
	"github.com/evilive3000/apiless-upload/internal/login"
	"github.com/evilive3000/apiless-upload/internal/profile"
)

func loginCmd(ctx context.Context, c *cli.Context) error {
	if c.Args().First() == "help" {
		return cli.ShowCommandHelp(c, c.Command.Name)
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
	chrome, err := env.chrome(c, true)
	if err != nil {
		return err
	}

	cfg := loginConfig()
	cfg.ExecPath = chrome
	if d := c.Duration("timeout"); d > 0 {
		cfg.LoginTimeout = d
	}
	root := c.String("temp-root")
	if root == "" {
		root = appcommon.TempRoot()
	}

	sp := common.InitSpinner(stdout, "login")
	acq := &login.Acquirer{
		Profiles:  profile.NewManager(appFs, root, env.log),
		Launcher:  env.launcher(),
		Spawner:   newSpawner(),
		Inspector: newInspector(),
		Confirm:   confirmEnter(stdin),
		Progress:  sp.Update,
		Log:       env.log,
		Config:    cfg,
	}
	set, err := acq.Acquire(ctx)
	sp.Stop()
	if err != nil {
		return err
	}
	if err := store.Save(set); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %d cookies for %s to %s\n", len(set), strings.Join(set.Domains(), ", "), store)
	return nil
}
