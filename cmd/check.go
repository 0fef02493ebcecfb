package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	appcommon "github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/internal/studio"
)

func checkCmd(ctx context.Context, c *cli.Context) error {
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

	v := studio.NewValidator(env.launcher(), env.log)
	v.ExecPath = chrome
	v.Settle = validatorSettle
	if !v.IsValid(ctx, set) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return appcommon.NewError(appcommon.KindInvalidSession, "check",
			"cookies no longer open the studio, run login again").WithTarget(store.String())
	}
	fmt.Fprintf(stdout, "Cookies in %s are valid\n", store)
	return nil
}
