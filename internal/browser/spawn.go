package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// ExecSpawner starts the browser with os/exec.
type ExecSpawner struct{}

// NewExecSpawner returns a Spawner that starts the browser as a child process.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{}
}

func spawnArgs(opts SpawnOptions) []string {
	args := []string{
		"--no-first-run",
		"--no-default-browser-check",
		"--new-window",
	}
	if opts.UserDataDir != "" {
		args = append(args, "--user-data-dir="+opts.UserDataDir)
	}
	if opts.URL != "" {
		args = append(args, opts.URL)
	}
	return args
}

// Spawn does not tie the process to ctx; the caller ends it with Kill.
// ctx only aborts a spawn that has not started yet.
func (ExecSpawner) Spawn(ctx context.Context, opts SpawnOptions) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.ExecPath == "" {
		return nil, errors.New("browser executable path is empty")
	}
	cmd := exec.Command(opts.ExecPath, spawnArgs(opts)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.ExecPath, err)
	}
	p := &execProcess{cmd: cmd, exited: make(chan struct{})}
	go p.reap()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	exited chan struct{}
	once   sync.Once
}

func (p *execProcess) reap() {
	// The exit status of a killed browser carries no information.
	_ = p.cmd.Wait()
	close(p.exited)
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Kill() error {
	var err error
	p.once.Do(func() {
		err = p.cmd.Process.Kill()
		if errors.Is(err, os.ErrProcessDone) {
			err = nil
		}
	})
	return err
}

func (p *execProcess) Exited() <-chan struct{} {
	return p.exited
}

var _ Spawner = ExecSpawner{}
