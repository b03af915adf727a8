package targets

import (
	"io"

	"github.com/absfs/outchain"
	"github.com/go-git/go-billy/v5"
)

type billyTarget struct {
	fsys billy.Basic
	name string
}

// BillyTarget creates or truncates name on a billy filesystem each time it
// is opened. The target's name is name.
func BillyTarget(fsys billy.Basic, name string) outchain.Target {
	return &billyTarget{fsys: fsys, name: name}
}

func (t *billyTarget) OpenStream() (io.WriteCloser, error) {
	return t.fsys.Create(t.name)
}

func (t *billyTarget) Name() (string, bool) {
	return t.name, true
}
