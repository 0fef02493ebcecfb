package cmd

import (
	"errors"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/pkg/credman"
)

// cookieStore is where a session lives between commands.
type cookieStore interface {
	Load() (cookies.Set, error)
	Save(cookies.Set) error
	Clear() error
	String() string
}

type fileStore struct {
	fs   afero.Fs
	path string
}

func (f fileStore) Load() (cookies.Set, error) {
	set, err := cookies.Load(f.fs, f.path)
	switch {
	case errors.Is(err, cookies.ErrNoCookieFile), errors.Is(err, cookies.ErrEmptyCookieFile):
		return nil, common.WrapError(common.KindValidation, "cookies", "no saved session, run login first", err).WithTarget(f.path)
	case errors.Is(err, cookies.ErrNotJSON):
		return nil, common.WrapError(common.KindValidation, "cookies", "unusable cookie file", err).WithTarget(f.path)
	case err != nil:
		return nil, common.WrapError(common.KindEnvironment, "cookies", "could not read cookie file", err).WithTarget(f.path)
	}
	return set, nil
}

func (f fileStore) Save(set cookies.Set) error {
	if err := cookies.Save(f.fs, f.path, set); err != nil {
		return common.WrapError(common.KindEnvironment, "cookies", "could not save cookies", err).WithTarget(f.path)
	}
	return nil
}

func (f fileStore) Clear() error {
	err := f.fs.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return common.WrapError(common.KindEnvironment, "cookies", "could not remove cookie file", err).WithTarget(f.path)
	}
	return nil
}

func (f fileStore) String() string { return f.path }

type vaultStore struct {
	v *credman.Vault
}

func (s vaultStore) Load() (cookies.Set, error) {
	set, err := s.v.Load()
	switch {
	case errors.Is(err, credman.ErrEmptyVault):
		return nil, common.WrapError(common.KindValidation, "vault", "no saved session, run login --vault first", err).WithTarget(s.v.Path())
	case err != nil:
		return nil, common.WrapError(common.KindEnvironment, "vault", "could not open vault", err).WithTarget(s.v.Path())
	}
	return set, nil
}

func (s vaultStore) Save(set cookies.Set) error {
	if err := s.v.Save(set); err != nil {
		return common.WrapError(common.KindEnvironment, "vault", "could not save cookies", err).WithTarget(s.v.Path())
	}
	return nil
}

func (s vaultStore) Clear() error {
	if err := s.v.Clear(); err != nil {
		return common.WrapError(common.KindEnvironment, "vault", "could not clear vault", err).WithTarget(s.v.Path())
	}
	return nil
}

func (s vaultStore) String() string { return s.v.Path() + " (encrypted)" }

func openStore(c *cli.Context) (cookieStore, error) {
	if c.Bool("vault") {
		dir, err := common.ConfigDir()
		if err != nil {
			return nil, common.WrapError(common.KindEnvironment, "vault", "no config directory", err)
		}
		v, err := credman.OpenDefault(appFs, common.AppName, dir, common.VaultFileName)
		if err != nil {
			return nil, common.WrapError(common.KindEnvironment, "vault", "could not open vault", err)
		}
		return vaultStore{v: v}, nil
	}
	path := c.String("cookies")
	if path == "" {
		var err error
		if path, err = common.DefaultCookiePath(); err != nil {
			return nil, common.WrapError(common.KindEnvironment, "cookies", "no config directory", err)
		}
	}
	return fileStore{fs: appFs, path: path}, nil
}
