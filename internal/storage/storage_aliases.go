package storage

import (
	"errors"
	"fmt"
	"strings"
)

var ErrAliasNotFound = errors.New("alias not found")

// Alias looks up an alias case-insensitively.
func (s *Storage) Alias(name string) (string, bool) {
	v, ok := s.aliases.Get(strings.ToLower(name))
	if !ok {
		return "", false
	}
	target, ok := v.(string)
	return target, ok
}

// Lookup satisfies the resolver's alias lookup contract.
func (s *Storage) Lookup(name string) (string, bool) {
	return s.Alias(name)
}

// SetAlias stores name -> target, overwriting any previous value.
// The table is on disk when this returns nil.
func (s *Storage) SetAlias(name, target string) error {
	key := strings.ToLower(name)
	if key == "" {
		return fmt.Errorf("alias name cannot be empty")
	}
	if err := s.aliases.Set(key, target); err != nil {
		return fmt.Errorf("failed to save alias %q: %w", key, err)
	}
	return nil
}

// DeleteAlias removes an alias or returns ErrAliasNotFound.
func (s *Storage) DeleteAlias(name string) error {
	key := strings.ToLower(name)
	existed, err := s.aliases.Delete(key)
	if err != nil {
		return fmt.Errorf("failed to delete alias %q: %w", key, err)
	}
	if !existed {
		return ErrAliasNotFound
	}
	return nil
}

// AliasNames returns the stored aliases in sorted order.
func (s *Storage) AliasNames() []string {
	return s.aliases.Keys()
}

// Aliases returns a copy of the alias table.
func (s *Storage) Aliases() map[string]string {
	out := make(map[string]string)
	for _, k := range s.aliases.Keys() {
		if v, ok := s.Alias(k); ok {
			out[k] = v
		}
	}
	return out
}
