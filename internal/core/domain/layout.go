package domain

import "path/filepath"

const (
	// ShelfDirName is the name of the local state directory.
	ShelfDirName = ".shelf"

	// SnapshotDirName is the name of the document store snapshot directory.
	SnapshotDirName = "snapshots"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// GeocodeDirName is the name of the geocoding cache directory.
	GeocodeDirName = "geocode"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "shelf.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultShelfPath returns the root directory for local state.
func DefaultShelfPath() string {
	return ShelfDirName
}

// DefaultSnapshotPath returns the default path for document store snapshots.
func DefaultSnapshotPath() string {
	return filepath.Join(ShelfDirName, SnapshotDirName)
}

// DefaultGeocodeCachePath returns the default path for the geocoding cache.
func DefaultGeocodeCachePath() string {
	return filepath.Join(ShelfDirName, CacheDirName, GeocodeDirName)
}
