// Package session persists lightweight editor state between runs: the
// recently opened documents and the last macro directory. It is deliberately
// separate from scene documents, which carry the actual content.
package session

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const maxRecent = 10

const (
	sessionObject   = "session"
	sessionProperty = "state"
)

// State is the serialized session payload.
type State struct {
	RecentDocuments []string `yaml:"recentDocuments"`
	LastMacroDir    string   `yaml:"lastMacroDir"`
}

// Manager loads and saves session state through gdata. A nil gdata manager
// puts it in degraded mode: state lives in memory only and Save is a no-op,
// so a broken storage backend never blocks editing.
type Manager struct {
	storage *gdata.Manager
	state   State
	log     *zap.Logger
}

// NewManager creates a session manager and loads any previously saved state.
// A load failure is not fatal; the manager starts with empty state.
func NewManager(storage *gdata.Manager, log *zap.Logger) *Manager {
	m := &Manager{storage: storage, log: log}
	if err := m.Load(); err != nil {
		log.Warn("failed to load session state, starting fresh", zap.Error(err))
	}
	return m
}

// Load reads session state from storage. Missing state is not an error.
func (m *Manager) Load() error {
	if m.storage == nil {
		return nil
	}
	if !m.storage.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}
	data, err := m.storage.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("load session state: %w", err)
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("unmarshal session state: %w", err)
	}
	m.state = st
	return nil
}

// Save writes the current state to storage. No-op in degraded mode.
func (m *Manager) Save() error {
	if m.storage == nil {
		return nil
	}
	data, err := yaml.Marshal(m.state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	if err := m.storage.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	m.log.Debug("session state saved")
	return nil
}

// TouchDocument moves path to the front of the recent list, dropping any
// earlier occurrence and trimming the list to its cap.
func (m *Manager) TouchDocument(path string) {
	recent := make([]string, 0, len(m.state.RecentDocuments)+1)
	recent = append(recent, path)
	for _, p := range m.state.RecentDocuments {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}
	m.state.RecentDocuments = recent
}

// RecentDocuments returns the recent list, most recent first.
func (m *Manager) RecentDocuments() []string {
	return m.state.RecentDocuments
}

// SetMacroDir remembers the last macro directory used.
func (m *Manager) SetMacroDir(dir string) {
	m.state.LastMacroDir = dir
}

// MacroDir returns the last macro directory, or "" if none was recorded.
func (m *Manager) MacroDir() string {
	return m.state.LastMacroDir
}
