package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/service"
)

var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrInvalidMission  = errors.New("invalid mission")
)

// DefaultMissionID is tried first when picking the default mission
const DefaultMissionID = "classic"

// Manager handles mission loading and caching
type Manager struct {
	missionDir     string
	defaultMission *engine.MissionDefinition
	missions       map[string]*engine.MissionDefinition
	mu             sync.RWMutex
	loads          singleflight.Group
}

// NewManager creates a new mission manager
func NewManager(missionDir string) (*Manager, error) {
	// Ensure mission directory exists
	if _, err := os.Stat(missionDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("mission directory does not exist: %s", missionDir)
	}

	m := &Manager{
		missionDir: missionDir,
		missions:   make(map[string]*engine.MissionDefinition),
	}

	if err := m.loadDefaultMission(); err != nil {
		return nil, fmt.Errorf("failed to load default mission: %w", err)
	}

	return m, nil
}

// LoadMission loads a mission by id. Concurrent loads of the same id share
// one read of the mission directory.
func (m *Manager) LoadMission(id string) (*engine.MissionDefinition, error) {
	m.mu.RLock()
	if def, exists := m.missions[id]; exists {
		m.mu.RUnlock()
		return def, nil
	}
	m.mu.RUnlock()

	v, err, _ := m.loads.Do(id, func() (interface{}, error) {
		def, err := m.findMission(id)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.missions[id] = def
		m.mu.Unlock()
		return def, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.MissionDefinition), nil
}

// findMission scans the mission files for an id
func (m *Manager) findMission(id string) (*engine.MissionDefinition, error) {
	files, err := m.missionFiles()
	if err != nil {
		return nil, err
	}

	for _, path := range files {
		file, err := ReadMissionFile(path)
		if err != nil {
			continue
		}
		if _, ok := file.Missions[id]; !ok {
			continue
		}
		return file.Definition(id)
	}
	return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, id)
}

// ListMissions returns information about all available missions. Invalid
// files and missions are skipped.
func (m *Manager) ListMissions() ([]*service.MissionInfo, error) {
	files, err := m.missionFiles()
	if err != nil {
		return nil, err
	}

	var infos []*service.MissionInfo
	seen := make(map[string]bool)
	for _, path := range files {
		file, err := ReadMissionFile(path)
		if err != nil {
			continue
		}
		for _, id := range file.IDs() {
			if seen[id] {
				continue
			}
			def, err := file.Definition(id)
			if err != nil {
				continue
			}
			seen[id] = true
			infos = append(infos, &service.MissionInfo{
				Filename:    filepath.Base(path),
				MissionID:   id,
				Name:        def.Name,
				Description: def.Description,
				Width:       def.Width,
				Height:      def.Height,
				Geese:       len(def.Geese),
			})
		}
	}

	return infos, nil
}

// GetDefault returns the default mission
func (m *Manager) GetDefault() *engine.MissionDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMission
}

// SetDefault sets the default mission by id
func (m *Manager) SetDefault(id string) error {
	def, err := m.LoadMission(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMission = def
	return nil
}

// RefreshCache drops every cached mission and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.missions = make(map[string]*engine.MissionDefinition)
	m.mu.Unlock()

	return m.loadDefaultMission()
}

// loadDefaultMission picks classic, then the first listed mission, then
// the built-in mission
func (m *Manager) loadDefaultMission() error {
	def, err := m.LoadMission(DefaultMissionID)
	if err != nil {
		infos, listErr := m.ListMissions()
		if listErr != nil || len(infos) == 0 {
			m.setDefault(engine.DefaultMissionDefinition())
			return nil
		}

		def, err = m.LoadMission(infos[0].MissionID)
		if err != nil {
			m.setDefault(engine.DefaultMissionDefinition())
			return nil
		}
	}

	m.setDefault(def)
	return nil
}

func (m *Manager) setDefault(def *engine.MissionDefinition) {
	m.mu.Lock()
	m.defaultMission = def
	m.mu.Unlock()
}

// SaveMission writes a mission to <id>.yaml in the mission directory
func (m *Manager) SaveMission(id string, def *engine.MissionDefinition) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid mission id %q", ErrInvalidMission, id)
	}
	if err := engine.ValidateMissionDefinition(def); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMission, err)
	}

	file := MissionFile{Missions: map[string]MissionEntry{id: EntryFromDefinition(def)}}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	path := filepath.Join(m.missionDir, id+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mission file: %w", err)
	}

	saved := *def
	saved.ID = id
	m.mu.Lock()
	m.missions[id] = &saved
	m.mu.Unlock()

	return nil
}

// missionFiles lists the YAML files of the mission directory in name order
func (m *Manager) missionFiles() ([]string, error) {
	entries, err := os.ReadDir(m.missionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsMissionFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(m.missionDir, entry.Name()))
	}
	return files, nil
}

// IsMissionFile reports whether a file name has a YAML extension
func IsMissionFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// ReadMissionFile reads and parses a mission file from disk
func ReadMissionFile(path string) (*MissionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission file: %w", err)
	}
	file, err := ParseMissionFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return file, nil
}
