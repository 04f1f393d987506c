package become

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kayon/become/scanner"
	"github.com/kayon/become/utils"
)

var ErrInvalidRegion = errors.New("invalid maps line")

const (
	inodeWidth  = 8
	pathnamePad = "                    "
)

// Region is one line of /proc/self/maps.
//
// Pathname is empty for anonymous mappings. It may also be a pseudo path:
//   - [stack]: the main thread's stack
//   - [stack:<tid>]: a thread's stack (Linux 3.4 to 4.4)
//   - [vdso]: the virtual dynamically linked shared object
//   - [heap]: the process heap
type Region struct {
	Start    uint64
	End      uint64
	Perms    Permissions
	Offset   uint64
	Device   string
	Inode    uint64
	Pathname string
}

func (region Region) Size() uint64 {
	return region.End - region.Start
}

// Candidate reports whether the region may hold mutable references.
func (region Region) Candidate() bool {
	return region.Perms.Read() && region.Perms.Write()
}

func (region Region) Range() scanner.Range {
	return scanner.Range{Start: uintptr(region.Start), End: uintptr(region.End)}
}

// Format renders the region the way the kernel lays out a maps line.
func (region Region) Format() (string, error) {
	perms, err := region.Perms.Format()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%08x-%08x %s %08x %s %-*d",
		region.Start, region.End,
		perms,
		region.Offset,
		region.Device,
		inodeWidth, region.Inode,
	)
	if region.Pathname != "" {
		b.WriteString(pathnamePad)
		b.WriteString(region.Pathname)
	}
	return b.String(), nil
}

func (region Region) String() string {
	s, err := region.Format()
	if err != nil {
		return fmt.Sprintf("%08x-%08x %v", region.Start, region.End, err)
	}
	return s
}

// ParseRegion parses a single maps line:
//
//	address           perms offset  dev   inode      pathname
//	00400000-00452000 r-xp 00000000 08:02 173521     /usr/bin/dbus-daemon
func ParseRegion(raw []byte) (region Region, err error) {
	line := raw

	// address
	i := bytes.IndexByte(line, ' ')
	if i < 0 {
		return Region{}, invalidRegion(raw, "address")
	}
	dash := bytes.IndexByte(line[:i], '-')
	if dash < 0 {
		return Region{}, invalidRegion(raw, "address")
	}
	if region.Start, err = parseHex(line[:dash]); err != nil {
		return Region{}, invalidRegion(raw, "start")
	}
	if region.End, err = parseHex(line[dash+1 : i]); err != nil {
		return Region{}, invalidRegion(raw, "end")
	}
	if region.Start >= region.End {
		return Region{}, invalidRegion(raw, "empty range")
	}
	line = line[i+1:]

	// perms
	if len(line) <= permissionsLen || line[permissionsLen] != ' ' {
		return Region{}, invalidRegion(raw, "permissions")
	}
	if region.Perms, err = ParsePermissions(line[:permissionsLen]); err != nil {
		return Region{}, errors.Wrapf(err, "maps line %q", raw)
	}
	line = line[permissionsLen+1:]

	// offset
	field, line, ok := cutField(line)
	if !ok {
		return Region{}, invalidRegion(raw, "offset")
	}
	if region.Offset, err = parseHex(field); err != nil {
		return Region{}, invalidRegion(raw, "offset")
	}

	// dev
	if field, line, ok = cutField(line); !ok || !validDevice(field) {
		return Region{}, invalidRegion(raw, "device")
	}
	region.Device = string(field)

	// inode, the last mandatory field
	if i = bytes.IndexByte(line, ' '); i < 0 {
		field, line = line, nil
	} else {
		field, line = line[:i], line[i+1:]
	}
	if region.Inode, err = strconv.ParseUint(utils.BytesToString(field), 10, 64); err != nil {
		return Region{}, invalidRegion(raw, "inode")
	}

	// the pathname is padded to a column, but is otherwise verbatim
	region.Pathname = string(bytes.TrimLeft(line, " "))
	return region, nil
}

func invalidRegion(raw []byte, field string) error {
	return errors.Wrapf(ErrInvalidRegion, "%s in %q", field, raw)
}

// cutField splits off a field terminated by exactly one space.
func cutField(line []byte) (field, rest []byte, ok bool) {
	i := bytes.IndexByte(line, ' ')
	if i <= 0 {
		return nil, nil, false
	}
	return line[:i], line[i+1:], true
}

func parseHex(b []byte) (uint64, error) {
	return strconv.ParseUint(utils.BytesToString(b), 16, 64)
}

func validDevice(b []byte) bool {
	major, minor, ok := bytes.Cut(b, []byte{':'})
	if !ok || len(major) == 0 || len(minor) == 0 {
		return false
	}
	if _, err := parseHex(major); err != nil {
		return false
	}
	if _, err := parseHex(minor); err != nil {
		return false
	}
	return true
}
