//go:build linux

package become

import (
	"os"

	"github.com/pkg/errors"
)

const selfMapsPath = "/proc/self/maps"

func openMaps() (*Maps, error) {
	f, err := os.Open(selfMapsPath)
	if err != nil {
		return nil, errors.Wrap(err, "open self maps")
	}
	return &Maps{file: f}, nil
}
