package become

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissions_Inverse(t *testing.T) {
	for _, r := range "r-" {
		for _, w := range "w-" {
			for _, x := range "x-" {
				for _, s := range "ps" {
					in := string([]rune{r, w, x, s})
					p, err := ParsePermissions(in)
					require.NoError(t, err, in)

					out, err := p.Format()
					require.NoError(t, err, in)
					assert.Equal(t, in, out)
					assert.Equal(t, in, p.String())

					assert.Equal(t, r == 'r', p.Read(), in)
					assert.Equal(t, w == 'w', p.Write(), in)
					assert.Equal(t, x == 'x', p.Exec(), in)
					assert.Equal(t, s == 's', p.Shared(), in)
					assert.Equal(t, s == 'p', p.Private(), in)
				}
			}
		}
	}
}

func TestParsePermissions_Bytes(t *testing.T) {
	p, err := ParsePermissions([]byte("rw-p"))
	require.NoError(t, err)
	assert.Equal(t, PermRead|PermWrite|PermPrivate, p)
}

func TestParsePermissions_Invalid(t *testing.T) {
	for _, s := range []string{"", "rw-", "rw-pp", "rwxq", "RW-P", "wr-p", "r w-p", "rwx-", "xw-p", "----"} {
		_, err := ParsePermissions(s)
		assert.True(t, errors.Is(err, ErrInvalidPermissions), "%q: %v", s, err)
	}
}

func TestPermissions_Format(t *testing.T) {
	_, err := (PermRead | PermShared | PermPrivate).Format()
	assert.True(t, errors.Is(err, ErrConflictingSharing))
	assert.Equal(t, "????", (PermShared | PermPrivate).String())

	// anything not private renders as shared
	s, err := (PermRead | PermWrite).Format()
	require.NoError(t, err)
	assert.Equal(t, "rw-s", s)

	s, err = Permissions(0).Format()
	require.NoError(t, err)
	assert.Equal(t, "---s", s)
}
