//go:build !unix && !windows

package cookies

func defaultBrowserStores() []browserStores { return nil }
