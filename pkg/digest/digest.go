// Package digest computes content hashes and privacy-preserving username
// tokens. The SHA-256 primitive itself is treated as an external, well-known
// hash function (FIPS-180-4); this package only wires it into the two
// operations the agent needs.
package digest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// errDigest is the sentinel value returned when a file cannot be digested;
// callers must treat it as a probe error, never abort capture.
const errDigest = "error"

const chunkSize = 4096

// HashBytes returns the lowercase hex SHA-256 digest of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashFile streams path in chunkSize blocks and returns its lowercase hex
// SHA-256 digest. On any open or read failure it returns errDigest; the
// caller is responsible for recording a probe error, this function never
// panics or aborts.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return errDigest, err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	r := bufio.NewReaderSize(f, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errDigest, err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashUsername derives the privacy token "user_XXXX" from salt and user,
// where XXXX is the first four lowercase hex characters of
// SHA-256(salt + ":" + user). The raw username is never retained beyond this
// call.
func HashUsername(salt, user string) string {
	sum := sha256.Sum256([]byte(salt + ":" + user))
	full := hex.EncodeToString(sum[:])
	return fmt.Sprintf("user_%s", full[:4])
}
