package storage

import "time"

const historyKey = "commands"

// AppendCommandToHistory records an executed or denied command, keeping the
// most recent commandHistoryLimit entries.
func (s *Storage) AppendCommandToHistory(record CommandHistoryRecord) error {
	if record.Datetime.IsZero() {
		record.Datetime = time.Now()
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	list, err := s.FetchCommandHistory()
	if err != nil {
		return err
	}
	list = append(list, record)
	if len(list) > commandHistoryLimit {
		list = list[len(list)-commandHistoryLimit:]
	}
	return s.history.Set(historyKey, list)
}

// FetchCommandHistory returns the stored history, oldest first.
func (s *Storage) FetchCommandHistory() ([]CommandHistoryRecord, error) {
	raw, ok := s.history.Get(historyKey)
	if !ok {
		return []CommandHistoryRecord{}, nil
	}
	return decode[[]CommandHistoryRecord](raw)
}

// SetCommand is a shorthand for recording a successful command.
func (s *Storage) SetCommand(channelID, userID, username, command string, params []string) error {
	return s.AppendCommandToHistory(CommandHistoryRecord{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Command:   command,
		Params:    params,
	})
}
