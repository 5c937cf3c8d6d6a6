// Package datastore keeps a flat JSON object in memory and mirrors it to a
// single file. Every mutation is written through before it returns.
package datastore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("datastore is closed")

// Config holds configuration options for the DataStore
type Config struct {
	FilePath    string
	BackupCount int // Number of backup files to keep
	Logger      zerolog.Logger
}

// DefaultConfig returns a default configuration
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:    filePath,
		BackupCount: 3,
		Logger:      log.Logger.With().Str("component", "datastore").Str("file", filePath).Logger(),
	}
}

type DataStore struct {
	data         map[string]any // in-memory data storage
	file         string         // file path for persistent storage
	mu           sync.RWMutex   // guards data, lastChecksum and closed
	config       *Config
	lastChecksum string // checksum of last saved data
	dirty        bool   // a write failed, the file may not match data
	closed       bool
}

// New creates a new DataStore with default configuration
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig creates a new DataStore with custom configuration.
// A missing file starts an empty store; so does a file with invalid content,
// which is left untouched until the first mutation overwrites it.
func NewWithConfig(config *Config) (*DataStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if config.FilePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	store := &DataStore{
		data:   make(map[string]any),
		file:   config.FilePath,
		config: config,
	}

	_, err := os.Stat(config.FilePath)
	switch {
	case os.IsNotExist(err):
		config.Logger.Info().Msg("No data file found, starting empty")
	case err != nil:
		return nil, fmt.Errorf("failed to check file existence: %w", err)
	default:
		if err := store.loadFromFile(); err != nil {
			config.Logger.Warn().Err(err).Msg("Ignoring unreadable data file, starting empty")
			store.data = make(map[string]any)
		}
	}

	return store, nil
}

// Get retrieves a value by key
func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.closed {
		return nil, false
	}
	value, exists := ds.data[key]
	return value, exists
}

// Keys returns all keys in sorted order.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores a key-value pair and writes the whole table to disk.
func (ds *DataStore) Set(key string, value any) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}

	prev, had := ds.data[key]
	ds.data[key] = value
	if err := ds.saveLocked(); err != nil {
		if had {
			ds.data[key] = prev
		} else {
			delete(ds.data, key)
		}
		return err
	}
	return nil
}

// Delete removes a key and writes the whole table to disk.
// It reports whether the key existed.
func (ds *DataStore) Delete(key string) (bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return false, ErrClosed
	}

	prev, exists := ds.data[key]
	if !exists {
		return false, nil
	}
	delete(ds.data, key)
	if err := ds.saveLocked(); err != nil {
		ds.data[key] = prev
		return false, err
	}
	return true, nil
}

// Close rejects further use. The table is only flushed when an earlier
// write failed, so an unread file stays as it was.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return nil
	}
	ds.closed = true
	if !ds.dirty {
		return nil
	}
	return ds.saveLocked()
}

// saveLocked saves data to disk with atomic write and integrity checking.
// Callers hold ds.mu.
func (ds *DataStore) saveLocked() error {
	data, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	checksum := calculateChecksum(data)
	if checksum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			ds.config.Logger.Warn().Err(err).Msg("Failed to create backup")
		}
	}

	if err := ds.writeFileAtomic(data); err != nil {
		ds.dirty = true
		return err
	}

	if err := ds.verifyFile(data); err != nil {
		ds.dirty = true
		return fmt.Errorf("file verification failed: %w", err)
	}

	ds.lastChecksum = checksum
	ds.dirty = false
	return nil
}

// loadFromFile loads data from disk with validation
func (ds *DataStore) loadFromFile() error {
	data, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var temp map[string]any
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	if temp == nil {
		temp = make(map[string]any)
	}

	ds.data = temp
	ds.lastChecksum = calculateChecksum(data)
	return nil
}

// writeFileAtomic performs atomic file write using temporary file and rename
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmpFile := ds.file + ".tmp"

	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	if err := os.Rename(tmpFile, ds.file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// verifyFile verifies that the written file matches expected data
func (ds *DataStore) verifyFile(expectedData []byte) error {
	actualData, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("failed to read file for verification: %w", err)
	}

	if calculateChecksum(actualData) != calculateChecksum(expectedData) {
		return fmt.Errorf("file checksum mismatch")
	}

	return nil
}

// createBackup creates a timestamped backup of the current file
func (ds *DataStore) createBackup() error {
	if _, err := os.Stat(ds.file); os.IsNotExist(err) {
		return nil
	}

	timestamp := time.Now().Format("20060102_150405.000")
	backupFile := fmt.Sprintf("%s.backup.%s", ds.file, timestamp)

	src, err := os.Open(ds.file)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.cleanupOldBackups()
	return nil
}

// cleanupOldBackups removes old backup files beyond the configured limit
func (ds *DataStore) cleanupOldBackups() {
	matches, err := filepath.Glob(ds.file + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}

	var files []fileInfo
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil {
			files = append(files, fileInfo{match, info.ModTime()})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})

	for i := 0; i < len(files)-ds.config.BackupCount; i++ {
		os.Remove(files[i].path)
	}
}

// calculateChecksum computes SHA-256 checksum of data
func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
