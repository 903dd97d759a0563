package baseline

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/librepower/csentinel/internal/xerrors"
)

const (
	systemDir       = "/var/lib/sentinel"
	auditFileName   = "audit_baseline.dat"
	hostFileName    = "host_baseline.json"
	userDirFallback = ".sentinel"
)

// Store loads and saves baselines against an afero.Fs, defaulting to the
// real OS filesystem but swappable for an in-memory afero.Fs in tests.
type Store struct {
	fs afero.Fs
}

// NewStore builds a Store backed by the real filesystem.
func NewStore() *Store {
	return &Store{fs: afero.NewOsFs()}
}

// NewStoreWithFs builds a Store backed by an arbitrary afero.Fs, used by
// tests to exercise load/save without touching disk.
func NewStoreWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

func userDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, userDirFallback), nil
}

// searchPaths returns the load order for name: system path first, then the
// per-user fallback.
func searchPaths(name string) []string {
	paths := []string{filepath.Join(systemDir, name)}
	if dir, err := userDir(); err == nil {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

// LoadAudit loads the audit-metric baseline, trying the system path first
// then the per-user fallback. A missing file yields a BaselineAbsent error;
// a short file, a magic mismatch, or an unrecognised version in the first
// file found yields a BaselineCorrupt error. In every error case the
// returned baseline is the zero value, so a caller that ignores the error
// proceeds in warm-up.
func (s *Store) LoadAudit() (AuditBaseline, error) {
	for _, path := range searchPaths(auditFileName) {
		b, err := afero.ReadFile(s.fs, path)
		if err != nil {
			continue
		}
		baseline, err := decodeAudit(b)
		if err != nil {
			return AuditBaseline{}, xerrors.Wrap(err, xerrors.BaselineCorrupt, "baseline.LoadAudit")
		}
		return baseline, nil
	}
	return AuditBaseline{}, xerrors.New(xerrors.BaselineAbsent, "baseline.LoadAudit", "no baseline file found")
}

// SaveAudit writes b to the system path, creating the directory with mode
// 0700 and the file with mode 0600; on a permission failure it falls back
// to the per-user path under the same mode policy.
func (s *Store) SaveAudit(b AuditBaseline) error {
	data := encodeAudit(b)

	if err := s.writeSecure(filepath.Join(systemDir, auditFileName), data); err == nil {
		return nil
	}

	dir, err := userDir()
	if err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "baseline.SaveAudit")
	}
	return s.writeSecure(filepath.Join(dir, auditFileName), data)
}

func (s *Store) writeSecure(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, path, data, 0o600)
}

// LoadHost and SaveHost mirror LoadAudit/SaveAudit for the host-fingerprint
// baseline, which has no fixed wire format and is persisted as JSON.
func (s *Store) LoadHost() (HostBaseline, error) {
	for _, path := range searchPaths(hostFileName) {
		b, err := afero.ReadFile(s.fs, path)
		if err != nil {
			continue
		}
		var hb HostBaseline
		if err := json.Unmarshal(b, &hb); err != nil {
			return HostBaseline{}, xerrors.Wrap(err, xerrors.BaselineCorrupt, "baseline.LoadHost")
		}
		return hb, nil
	}
	return HostBaseline{}, xerrors.New(xerrors.BaselineAbsent, "baseline.LoadHost", "no baseline file found")
}

func (s *Store) SaveHost(hb HostBaseline) error {
	data, err := json.Marshal(hb)
	if err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "baseline.SaveHost")
	}
	if err := s.writeSecure(filepath.Join(systemDir, hostFileName), data); err == nil {
		return nil
	}
	dir, err := userDir()
	if err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "baseline.SaveHost")
	}
	return s.writeSecure(filepath.Join(dir, hostFileName), data)
}

// encodeAudit lays out the fixed header: 8-byte magic, 4-byte version,
// 8-byte created, 8-byte updated, 4-byte sample count, five little-endian
// float32 averages (52 bytes total). encoding/binary is the right tool here
// since no third-party library owns "encode this exact byte layout" any
// better than the standard library's fixed-width primitives.
func encodeAudit(b AuditBaseline) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(AuditMagic)
	binary.Write(buf, binary.LittleEndian, AuditVersion)
	binary.Write(buf, binary.LittleEndian, b.Created.Unix())
	binary.Write(buf, binary.LittleEndian, b.Updated.Unix())
	binary.Write(buf, binary.LittleEndian, b.SampleCount)
	binary.Write(buf, binary.LittleEndian, b.AvgAuthFailures)
	binary.Write(buf, binary.LittleEndian, b.AvgSudoCount)
	binary.Write(buf, binary.LittleEndian, b.AvgSensitiveAccess)
	binary.Write(buf, binary.LittleEndian, b.AvgTmpExecutions)
	binary.Write(buf, binary.LittleEndian, b.AvgShellSpawns)
	return buf.Bytes()
}

const auditHeaderLen = 8 + 4 + 8 + 8 + 4 + 5*4

func decodeAudit(data []byte) (AuditBaseline, error) {
	if len(data) < auditHeaderLen {
		return AuditBaseline{}, xerrors.New(xerrors.BaselineCorrupt, "baseline.decodeAudit", "short file")
	}
	if string(data[:8]) != AuditMagic {
		return AuditBaseline{}, xerrors.New(xerrors.BaselineCorrupt, "baseline.decodeAudit", "bad magic")
	}
	r := bytes.NewReader(data[8:])

	var version uint32
	binary.Read(r, binary.LittleEndian, &version)
	if version != AuditVersion {
		return AuditBaseline{}, xerrors.New(xerrors.BaselineCorrupt, "baseline.decodeAudit", "unrecognised version")
	}

	var created, updated int64
	var sampleCount uint32
	var avgAuth, avgSudo, avgSensitive, avgTmp, avgShell float32
	binary.Read(r, binary.LittleEndian, &created)
	binary.Read(r, binary.LittleEndian, &updated)
	binary.Read(r, binary.LittleEndian, &sampleCount)
	binary.Read(r, binary.LittleEndian, &avgAuth)
	binary.Read(r, binary.LittleEndian, &avgSudo)
	binary.Read(r, binary.LittleEndian, &avgSensitive)
	binary.Read(r, binary.LittleEndian, &avgTmp)
	binary.Read(r, binary.LittleEndian, &avgShell)

	return AuditBaseline{
		Created:            time.Unix(created, 0).UTC(),
		Updated:            time.Unix(updated, 0).UTC(),
		SampleCount:        sampleCount,
		AvgAuthFailures:    avgAuth,
		AvgSudoCount:       avgSudo,
		AvgSensitiveAccess: avgSensitive,
		AvgTmpExecutions:   avgTmp,
		AvgShellSpawns:     avgShell,
	}, nil
}
