// Package storage defines the corpus file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for corpus file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the corpus root).
	List(dir string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the file at path (relative to the corpus root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the corpus root).
	// The auto-fix path uses this so a crash never leaves a half-written record.
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the corpus root).
	Delete(path string) error
}
