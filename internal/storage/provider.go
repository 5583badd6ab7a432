// Package storage defines the content-store file-system abstraction.
package storage

// Provider is the interface for content-store file operations. All paths
// are relative to the store root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether a file or directory exists at path.
	Exists(path string) bool
	// MkdirAll creates the directory at path and any missing parents.
	MkdirAll(path string) error
	// ListDirs returns the names of immediate subdirectories of dir.
	// A missing dir yields an empty slice, not an error.
	ListDirs(dir string) ([]string, error)
	// Glob returns the base names of files under dir matching pattern.
	Glob(dir, pattern string) ([]string, error)
}
