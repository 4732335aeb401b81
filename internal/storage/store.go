// Package storage is a content-addressable store for build artifacts.
//
// Route tables, search indexes and build manifests are stored by the sha256
// of their bytes. A build references its objects via refs/builds/<id>, and
// refs/latest names the manifest of the most recent successful build.
package storage

import (
	"context"
	stderrors "errors"
	"time"
)

// ObjectStore stores build artifacts by content hash.
type ObjectStore interface {
	// Put stores an object and returns its content hash. Storing identical
	// bytes twice is a no-op returning the same hash.
	Put(ctx context.Context, obj *Object) (string, error)

	// Get returns the object with the given hash or ErrNotFound.
	Get(ctx context.Context, hash string) (*Object, error)

	Exists(ctx context.Context, hash string) (bool, error)

	// List returns the hashes of stored objects, filtered by type when
	// objectType is not empty.
	List(ctx context.Context, objectType ObjectType) ([]string, error)

	// AddBuildRef records the objects a build produced.
	AddBuildRef(ctx context.Context, buildID string, hashes []string) error

	// BuildRef returns the objects recorded for a build, nil if unknown.
	BuildRef(ctx context.Context, buildID string) ([]string, error)

	// SetLatest points refs/latest at a build manifest object.
	SetLatest(ctx context.Context, manifestHash string) error

	// Latest returns the manifest hash of refs/latest or ErrNotFound.
	Latest(ctx context.Context) (string, error)

	Close() error
}

// Object is a stored artifact.
type Object struct {
	Hash      string
	Type      ObjectType
	Data      []byte
	CreatedAt time.Time
	// Name is a human label such as "routes.json" or the search index file.
	Name string
}

// ObjectType identifies the kind of stored object.
type ObjectType string

const (
	ObjectTypeRouteTable    ObjectType = "route_table"
	ObjectTypeSearchIndex   ObjectType = "search_index"
	ObjectTypeBuildManifest ObjectType = "build_manifest"
)

// ErrNotFound is returned when an object or ref doesn't exist.
var ErrNotFound = stderrors.New("object not found")

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}
