package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

var validHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

// FSStore is a filesystem ObjectStore with the layout:
//
//	<state dir>/
//	  objects/
//	    ab/
//	      cd1234...            (object bytes)
//	      cd1234....meta.json  (type, name, creation time)
//	  refs/
//	    builds/<build id>      (one object hash per line)
//	    latest                 (manifest hash)
type FSStore struct {
	basePath string
	mu       sync.RWMutex
}

type objectMeta struct {
	Type      ObjectType `json:"type"`
	Name      string     `json:"name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewFSStore creates the store directories below basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	for _, dir := range []string{
		filepath.Join(basePath, "objects"),
		filepath.Join(basePath, "refs", "builds"),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return &FSStore{basePath: basePath}, nil
}

// HashBytes returns the content hash used as object key.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put stores an object and returns its content hash.
func (s *FSStore) Put(ctx context.Context, obj *Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := HashBytes(obj.Data)
	objectPath := s.objectPath(hash)
	if _, err := os.Stat(objectPath); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(objectPath), 0o750); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}
	if err := writeAtomic(objectPath, obj.Data); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}

	created := obj.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	meta, err := json.Marshal(objectMeta{Type: obj.Type, Name: obj.Name, CreatedAt: created})
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := writeAtomic(objectPath+".meta.json", meta); err != nil {
		return hash, fmt.Errorf("write metadata: %w", err)
	}
	return hash, nil
}

// Get retrieves an object by its content hash.
func (s *FSStore) Get(ctx context.Context, hash string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validHash.MatchString(hash) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, hash)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.objectPath(hash)) // #nosec G304 -- hash is validated hex
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	meta, err := s.readMeta(hash)
	if err != nil {
		return nil, err
	}
	return &Object{Hash: hash, Type: meta.Type, Name: meta.Name, CreatedAt: meta.CreatedAt, Data: data}, nil
}

// Exists checks if an object with the given hash exists.
func (s *FSStore) Exists(_ context.Context, hash string) (bool, error) {
	if !validHash.MatchString(hash) {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.objectPath(hash))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat object: %w", err)
	}
}

// List returns stored object hashes in sorted order.
func (s *FSStore) List(ctx context.Context, objectType ObjectType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUnlocked(ctx, objectType)
}

func (s *FSStore) listUnlocked(ctx context.Context, objectType ObjectType) ([]string, error) {
	objectsDir := filepath.Join(s.basePath, "objects")
	var hashes []string
	err := filepath.WalkDir(objectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta.json") {
			return nil
		}
		rel, relErr := filepath.Rel(objectsDir, path)
		if relErr != nil {
			return relErr
		}
		hash := strings.ReplaceAll(rel, string(filepath.Separator), "")
		if !validHash.MatchString(hash) {
			return nil
		}
		if objectType != "" {
			meta, metaErr := s.readMeta(hash)
			if metaErr != nil || meta.Type != objectType {
				return nil
			}
		}
		hashes = append(hashes, hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk objects: %w", err)
	}
	sort.Strings(hashes)
	return hashes, nil
}

// GC removes objects not referenced by any build ref or refs/latest.
func (s *FSStore) GC(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	referenced := make(map[string]bool)
	entries, err := os.ReadDir(filepath.Join(s.basePath, "refs", "builds"))
	if err != nil {
		return 0, fmt.Errorf("read build refs: %w", err)
	}
	for _, e := range entries {
		hashes, readErr := s.readRef(filepath.Join("builds", e.Name()))
		if readErr != nil {
			return 0, readErr
		}
		for _, h := range hashes {
			referenced[h] = true
		}
	}
	if latest, readErr := s.readRef("latest"); readErr == nil {
		for _, h := range latest {
			referenced[h] = true
		}
	}

	all, err := s.listUnlocked(ctx, "")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, hash := range all {
		if referenced[hash] {
			continue
		}
		p := s.objectPath(hash)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("delete object %s: %w", hash, err)
		}
		_ = os.Remove(p + ".meta.json")
		_ = os.Remove(filepath.Dir(p)) // only succeeds when empty
		removed++
	}
	return removed, nil
}

// AddBuildRef associates a build ID with a set of object hashes.
func (s *FSStore) AddBuildRef(_ context.Context, buildID string, hashes []string) error {
	if err := checkRefName(buildID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(filepath.Join(s.basePath, "refs", "builds", buildID), []byte(strings.Join(hashes, "\n")+"\n"))
}

// BuildRef returns the object hashes recorded for a build.
func (s *FSStore) BuildRef(_ context.Context, buildID string) ([]string, error) {
	if err := checkRefName(buildID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	hashes, err := s.readRef(filepath.Join("builds", buildID))
	if IsNotFound(err) {
		return nil, nil
	}
	return hashes, err
}

// SetLatest points refs/latest at a build manifest.
func (s *FSStore) SetLatest(_ context.Context, manifestHash string) error {
	if !validHash.MatchString(manifestHash) {
		return fmt.Errorf("invalid manifest hash %q", manifestHash)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(filepath.Join(s.basePath, "refs", "latest"), []byte(manifestHash+"\n"))
}

// Latest returns the manifest hash named by refs/latest.
func (s *FSStore) Latest(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hashes, err := s.readRef("latest")
	if err != nil {
		return "", err
	}
	if len(hashes) != 1 {
		return "", fmt.Errorf("%w: refs/latest is empty", ErrNotFound)
	}
	return hashes[0], nil
}

// Close releases resources.
func (s *FSStore) Close() error { return nil }

func (s *FSStore) readRef(name string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, "refs", name)) // #nosec G304 -- ref names are checked
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: refs/%s", ErrNotFound, filepath.ToSlash(name))
		}
		return nil, fmt.Errorf("read ref: %w", err)
	}
	var hashes []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			hashes = append(hashes, line)
		}
	}
	return hashes, nil
}

func (s *FSStore) readMeta(hash string) (objectMeta, error) {
	data, err := os.ReadFile(s.objectPath(hash) + ".meta.json") // #nosec G304 -- hash is validated hex
	if err != nil {
		return objectMeta{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta objectMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return objectMeta{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return meta, nil
}

// objectPath uses the first two hash characters as directory.
func (s *FSStore) objectPath(hash string) string {
	return filepath.Join(s.basePath, "objects", hash[:2], hash[2:])
}

func checkRefName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid ref name %q", name)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
