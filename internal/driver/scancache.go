package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/project"
)

// Current schema version - increment when ScanPayload format changes
const scanCacheSchemaVersion uint16 = 1

// ScanCache keeps the scan result of each input file on disk, keyed by the
// file content and the project options that influence entry keys.
// Thread-safe for concurrent access.
type ScanCache struct {
	mu  sync.RWMutex
	dir string
}

// ScanPayload is what the scan pass learns about one file.
type ScanPayload struct {
	Schema    uint16            `msgpack:"schema"`
	Records   int               `msgpack:"records"`
	Entries   []accession.Entry `msgpack:"entries"`
	Truncated bool              `msgpack:"truncated,omitempty"`
}

// OpenScanCache initializes and returns a cache at the standard location.
func OpenScanCache(app string) (*ScanCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenScanCacheAt(filepath.Join(base, app))
}

// OpenScanCacheAt opens a cache rooted at dir.
func OpenScanCacheAt(dir string) (*ScanCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ScanCache{dir: dir}, nil
}

// ScanKey is the cache key of a file under cfg.
func ScanKey(file project.Digest, cfg *project.Config) project.Digest {
	return project.Combine(file, cfg.ScanDigest())
}

func (c *ScanCache) pathFor(key project.Digest) string {
	// подкаталог "scan" для удобства очистки
	return filepath.Join(c.dir, "scan", key.String()+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *ScanCache) Put(key project.Digest, payload *ScanPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	payload.Schema = scanCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *ScanCache) Get(key project.Digest, out *ScanPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == scanCacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *ScanCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
