//go:build aix

package probes

import (
	"os"
	"syscall"
)

type ownership struct {
	uid, gid int
}

func statOwnership(info os.FileInfo) (ownership, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ownership{}, false
	}
	return ownership{uid: int(st.Uid), gid: int(st.Gid)}, true
}
