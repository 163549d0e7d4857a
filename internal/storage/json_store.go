package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pillarlog/pillarlog/internal/models"
)

type JSONStore struct {
	path  string
	store *Snapshot
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	settings := models.Settings{}
	models.ApplyDefaultSettings(&settings)

	s.store = &Snapshot{
		Version:  SnapshotVersion,
		Settings: settings,
		Plans:    make(map[string]models.DayPlan),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'pillarlog init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Snapshot{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Plans == nil {
		s.store.Plans = make(map[string]models.DayPlan)
	}
	models.ApplyDefaultSettings(&s.store.Settings)

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) loaded() error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	if err := s.loaded(); err != nil {
		return models.Settings{}, err
	}
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Settings = settings
	return s.save()
}

func (s *JSONStore) AddPillar(p models.Pillar) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Pillars = append(s.store.Pillars, p)
	return s.save()
}

func (s *JSONStore) GetPillar(id string) (models.Pillar, error) {
	if err := s.loaded(); err != nil {
		return models.Pillar{}, err
	}
	for _, p := range s.store.Pillars {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Pillar{}, fmt.Errorf("pillar %s: %w", id, ErrNotFound)
}

func (s *JSONStore) GetAllPillars() ([]models.Pillar, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.Pillar, len(s.store.Pillars))
	copy(out, s.store.Pillars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *JSONStore) UpdatePillar(p models.Pillar) error {
	if err := s.loaded(); err != nil {
		return err
	}
	for i := range s.store.Pillars {
		if s.store.Pillars[i].ID == p.ID {
			s.store.Pillars[i] = p
			return s.save()
		}
	}
	return fmt.Errorf("pillar %s: %w", p.ID, ErrNotFound)
}

func (s *JSONStore) DeletePillar(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	for i := range s.store.Pillars {
		if s.store.Pillars[i].ID == id {
			s.store.Pillars = append(s.store.Pillars[:i], s.store.Pillars[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("pillar %s: %w", id, ErrNotFound)
}

func (s *JSONStore) AddCategory(c models.Category) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Categories = append(s.store.Categories, c)
	return s.save()
}

func (s *JSONStore) GetCategory(id string) (models.Category, error) {
	if err := s.loaded(); err != nil {
		return models.Category{}, err
	}
	for _, c := range s.store.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
}

func (s *JSONStore) GetAllCategories() ([]models.Category, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.Category, len(s.store.Categories))
	copy(out, s.store.Categories)
	return out, nil
}

func (s *JSONStore) UpdateCategory(c models.Category) error {
	if err := s.loaded(); err != nil {
		return err
	}
	for i := range s.store.Categories {
		if s.store.Categories[i].ID == c.ID {
			s.store.Categories[i] = c
			return s.save()
		}
	}
	return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
}

func (s *JSONStore) DeleteCategory(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	for i := range s.store.Categories {
		if s.store.Categories[i].ID == id {
			s.store.Categories = append(s.store.Categories[:i], s.store.Categories[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("category %s: %w", id, ErrNotFound)
}

func (s *JSONStore) AddSubcategory(sub models.Subcategory) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Subcategories = append(s.store.Subcategories, sub)
	return s.save()
}

func (s *JSONStore) GetSubcategory(id string) (models.Subcategory, error) {
	if err := s.loaded(); err != nil {
		return models.Subcategory{}, err
	}
	for _, sub := range s.store.Subcategories {
		if sub.ID == id {
			return sub, nil
		}
	}
	return models.Subcategory{}, fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
}

func (s *JSONStore) GetSubcategories(categoryID string) ([]models.Subcategory, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []models.Subcategory
	for _, sub := range s.store.Subcategories {
		if sub.CategoryID == categoryID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *JSONStore) GetAllSubcategories() ([]models.Subcategory, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.Subcategory, len(s.store.Subcategories))
	copy(out, s.store.Subcategories)
	return out, nil
}

func (s *JSONStore) DeleteSubcategory(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	for i := range s.store.Subcategories {
		if s.store.Subcategories[i].ID == id {
			s.store.Subcategories = append(s.store.Subcategories[:i], s.store.Subcategories[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
}

func (s *JSONStore) SavePlan(plan models.DayPlan) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Plans[plan.Date] = plan
	return s.save()
}

func (s *JSONStore) GetPlan(date string) (models.DayPlan, error) {
	if err := s.loaded(); err != nil {
		return models.DayPlan{}, err
	}
	plan, ok := s.store.Plans[date]
	if !ok {
		return models.DayPlan{}, fmt.Errorf("plan for %s: %w", date, ErrNotFound)
	}
	return plan, nil
}

func (s *JSONStore) GetPlansBetween(start, end string) ([]models.DayPlan, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []models.DayPlan
	for date, plan := range s.store.Plans {
		if inDateRange(date, start, end) {
			out = append(out, plan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *JSONStore) AppendLog(entry models.LogEntry) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Logs = append(s.store.Logs, entry)
	return s.save()
}

func (s *JSONStore) DeleteLog(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	for i := range s.store.Logs {
		if s.store.Logs[i].ID == id {
			s.store.Logs = append(s.store.Logs[:i], s.store.Logs[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("log entry %s: %w", id, ErrNotFound)
}

func (s *JSONStore) GetLogsBetween(start, end string) ([]models.LogEntry, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []models.LogEntry
	for _, entry := range s.store.Logs {
		if inDateRange(entry.Date, start, end) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *JSONStore) Snapshot() (Snapshot, error) {
	if err := s.loaded(); err != nil {
		return Snapshot{}, err
	}
	return cloneSnapshot(*s.store), nil
}

func (s *JSONStore) ReplaceAll(snap Snapshot) error {
	if err := s.loaded(); err != nil {
		return err
	}
	replacement := cloneSnapshot(snap)
	replacement.Version = SnapshotVersion
	if replacement.Plans == nil {
		replacement.Plans = make(map[string]models.DayPlan)
	}
	models.ApplyDefaultSettings(&replacement.Settings)
	s.store = &replacement
	return s.save()
}

func (s *JSONStore) Reset() error {
	if err := s.loaded(); err != nil {
		return err
	}
	settings := s.store.Settings
	s.store = &Snapshot{
		Version:  SnapshotVersion,
		Settings: settings,
		Plans:    make(map[string]models.DayPlan),
	}
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// inDateRange checks start <= date <= end on YYYY-MM-DD strings, where an
// empty bound is unbounded. Lexicographic comparison is correct for the
// fixed-width date format.
func inDateRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

func cloneSnapshot(in Snapshot) Snapshot {
	out := in
	out.Pillars = append([]models.Pillar(nil), in.Pillars...)
	out.Categories = append([]models.Category(nil), in.Categories...)
	out.Subcategories = append([]models.Subcategory(nil), in.Subcategories...)
	out.Logs = append([]models.LogEntry(nil), in.Logs...)
	out.Plans = make(map[string]models.DayPlan, len(in.Plans))
	for date, plan := range in.Plans {
		plan.Items = append([]models.DayItem(nil), plan.Items...)
		out.Plans[date] = plan
	}
	return out
}
