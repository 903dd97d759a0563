package probes

import (
	"os"
	"path/filepath"

	"github.com/librepower/csentinel/pkg/digest"
	"github.com/librepower/csentinel/pkg/fingerprint"
)

// Config stats and, when readable, digests each path in paths. A missing
// file still produces a record (exists=false); a regular file that stats
// but cannot be hashed keeps exists=true with sha256 "error". Either case
// is counted in the returned error count, never an abort.
func Config(paths []string) ([]fingerprint.Config, int) {
	out := make([]fingerprint.Config, 0, len(paths))
	errs := 0
	for _, p := range paths {
		rec, err := configOne(p)
		if err != nil {
			errs++
		}
		out = append(out, rec)
	}
	return out, errs
}

func configOne(path string) (fingerprint.Config, error) {
	rec := fingerprint.Config{Path: truncate(path, 1024)}

	lst, err := os.Lstat(path)
	if err != nil {
		return rec, err
	}
	rec.Symlink = lst.Mode()&os.ModeSymlink != 0

	resolved := path
	if rec.Symlink {
		if target, err := filepath.EvalSymlinks(path); err == nil {
			resolved = target
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return rec, err
	}
	rec.Exists = true
	rec.Size = info.Size()
	rec.Mode = uint32(info.Mode().Perm())
	rec.Mtime = info.ModTime().Unix()
	if stat, ok := statOwnership(info); ok {
		rec.UID, rec.GID = stat.uid, stat.gid
	}

	if info.Mode().IsRegular() {
		sum, err := digest.HashFile(resolved)
		if err != nil {
			rec.SHA256 = "error"
			return rec, err
		}
		rec.SHA256 = sum
	}
	return rec, nil
}
