//go:build !linux

package become

import "github.com/pkg/errors"

func openMaps() (*Maps, error) {
	return nil, errors.WithStack(ErrNotSupported)
}
