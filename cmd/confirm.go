package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
)

var errNoInput = errors.New("standard input closed before confirmation")

// confirmEnter waits for a line on r. The read itself cannot be
// interrupted; a cancelled ctx just stops waiting for it.
func confirmEnter(r io.Reader) func(context.Context) error {
	return func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() {
			_, err := bufio.NewReader(r).ReadString('\n')
			if errors.Is(err, io.EOF) {
				err = errNoInput
			}
			done <- err
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		}
	}
}
