//go:build aix

package probes

import "golang.org/x/sys/unix"

func pgidOf(pid int32) (int, error) {
	pgid, err := unix.Getpgid(int(pid))
	if err != nil {
		return 0, err
	}
	return pgid, nil
}
