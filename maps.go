package become

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

var ErrNotSupported = errors.New("self memory map is not supported on this platform")

// Maps is the open memory map of the current process.
// Every Parse reads it again, the address space changes all the time.
type Maps struct {
	file *os.File
}

// OpenMaps opens the memory map of the current process.
func OpenMaps() (*Maps, error) {
	return openMaps()
}

func (m *Maps) Close() error {
	return m.file.Close()
}

func (m *Maps) Parse() (Regions, error) {
	if _, err := m.file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "rewind %s", m.file.Name())
	}
	regions, err := ReadMaps(m.file)
	if err != nil {
		return nil, errors.WithMessage(err, m.file.Name())
	}
	return regions, nil
}

// ReadMaps parses maps lines from r. The first malformed line aborts the
// whole read.
func ReadMaps(r io.Reader) (Regions, error) {
	bufScan := bufio.NewScanner(r)
	regions := make(Regions, 0, defRegionsCaps)
	var lineNo int
	for bufScan.Scan() {
		lineNo++
		region, err := ParseRegion(bufScan.Bytes())
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", lineNo)
		}
		regions = append(regions, region)
	}
	if err := bufScan.Err(); err != nil {
		return nil, errors.Wrap(err, "read maps")
	}
	return regions, nil
}

// SelfRegions reads a fresh snapshot of the current process's regions.
func SelfRegions() (Regions, error) {
	m, err := OpenMaps()
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return m.Parse()
}
