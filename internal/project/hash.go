package project

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// Digest - фиксированный 256 битный хеш содержимого файла или конфигурации.
type Digest [32]byte

func (d Digest) String() string { return fmt.Sprintf("%x", d[:]) }

// Combine строит составной хеш: H( content || dep1 || dep2 ... ).
// Порядок deps должен быть детерминированным.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// FileDigest hashes the content of path.
func FileDigest(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}

// ScanDigest covers the options that change how entries are keyed and
// measured during the scan pass.
func (c *Config) ScanDigest() Digest {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%t|%t|%t", c.Prefix, c.Version, c.Kind, c.IgnoreGeneralIDs, c.RequireGeneralID, c.AccessionsPreAssigned)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
