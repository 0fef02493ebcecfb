package main

import (
	"fmt"
	"os"

	"github.com/evilive3000/apiless-upload/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

var osExit = os.Exit

func runMain(args []string, execute func([]string) error) int {
	err := execute(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ytupload: %s\n", err.Error())
	}
	return cmd.ExitCode(err)
}

func main() {
	osExit(runMain(os.Args, func(args []string) error {
		return cmd.Execute(args, cmd.BuildArgs{
			Version:   version,
			Commit:    commit,
			Date:      date,
			BuildType: buildType,
		})
	}))
}
