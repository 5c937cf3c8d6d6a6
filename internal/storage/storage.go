// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"discord-music-bot/datastore"
)

const commandHistoryLimit int = 50

// Storage bundles the two files the bot persists: the alias table and the
// command/audit history.
type Storage struct {
	aliases *datastore.DataStore
	history *datastore.DataStore

	historyMu sync.Mutex // serializes read-modify-write of the history list
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Params    []string  `json:"params,omitempty"`
	Denied    bool      `json:"denied,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Datetime  time.Time `json:"datetime"`
}

func New(aliasesPath, historyPath string) (*Storage, error) {
	aliases, err := datastore.New(aliasesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open aliases store: %w", err)
	}
	history, err := datastore.New(historyPath)
	if err != nil {
		aliases.Close()
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Storage{aliases: aliases, history: history}, nil
}

func (s *Storage) Close() error {
	aErr := s.aliases.Close()
	hErr := s.history.Close()
	if aErr != nil {
		return aErr
	}
	return hErr
}

// decode converts a value loaded from JSON (maps, []any) into a typed value.
func decode[T any](raw any) (T, error) {
	var out T
	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("error marshalling data: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("error unmarshalling to %T: %w", out, err)
	}
	return out, nil
}
