package become

import (
	"github.com/pkg/errors"

	"github.com/kayon/become/utils"
)

var (
	ErrInvalidPermissions = errors.New("invalid permissions")
	ErrConflictingSharing = errors.New("permissions cannot be both shared and private")
)

// Permissions is the access mask of a mapped region.
type Permissions uint8

const (
	PermRead Permissions = 1 << iota
	PermWrite
	PermExec
	PermShared
	PermPrivate
)

const permissionsLen = 4

func (p Permissions) Read() bool {
	return p&PermRead != 0
}

func (p Permissions) Write() bool {
	return p&PermWrite != 0
}

func (p Permissions) Exec() bool {
	return p&PermExec != 0
}

func (p Permissions) Shared() bool {
	return p&PermShared != 0
}

func (p Permissions) Private() bool {
	return p&PermPrivate != 0
}

// Format renders p in the 4 character maps form, e.g. "rw-p".
// Anything that is not private is rendered as shared.
func (p Permissions) Format() (string, error) {
	if p.Shared() && p.Private() {
		return "", errors.WithStack(ErrConflictingSharing)
	}
	res := []byte("---s")
	if p.Read() {
		res[0] = 'r'
	}
	if p.Write() {
		res[1] = 'w'
	}
	if p.Exec() {
		res[2] = 'x'
	}
	if p.Private() {
		res[3] = 'p'
	}
	return utils.BytesToString(res), nil
}

func (p Permissions) String() string {
	s, err := p.Format()
	if err != nil {
		return "????"
	}
	return s
}

// ParsePermissions parses exactly "[r-][w-][x-][ps]".
func ParsePermissions[T string | []byte](s T) (p Permissions, err error) {
	if len(s) != permissionsLen {
		return 0, errors.Wrapf(ErrInvalidPermissions, "%q", s)
	}
	switch s[0] {
	case 'r':
		p |= PermRead
	case '-':
	default:
		return 0, errors.Wrapf(ErrInvalidPermissions, "%q", s)
	}
	switch s[1] {
	case 'w':
		p |= PermWrite
	case '-':
	default:
		return 0, errors.Wrapf(ErrInvalidPermissions, "%q", s)
	}
	switch s[2] {
	case 'x':
		p |= PermExec
	case '-':
	default:
		return 0, errors.Wrapf(ErrInvalidPermissions, "%q", s)
	}
	switch s[3] {
	case 'p':
		p |= PermPrivate
	case 's':
		p |= PermShared
	default:
		return 0, errors.Wrapf(ErrInvalidPermissions, "%q", s)
	}
	return p, nil
}
