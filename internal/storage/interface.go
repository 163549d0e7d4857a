package storage

import (
	"errors"

	"github.com/pillarlog/pillarlog/internal/models"
)

// ErrNotFound is returned when a lookup misses. Domain code treats misses
// as silent no-ops; only the CLI surfaces them.
var ErrNotFound = errors.New("storage: not found")

// Snapshot is the full domain state: the unit of export/import and the
// document persisted by the JSON store.
type Snapshot struct {
	Version       int                       `json:"version" yaml:"version"`
	Settings      models.Settings           `json:"settings" yaml:"settings"`
	Pillars       []models.Pillar           `json:"pillars" yaml:"pillars"`
	Categories    []models.Category         `json:"categories" yaml:"categories"`
	Subcategories []models.Subcategory      `json:"subcategories" yaml:"subcategories"`
	Plans         map[string]models.DayPlan `json:"plans" yaml:"plans"`
	Logs          []models.LogEntry         `json:"logs" yaml:"logs"`
}

// SnapshotVersion is the current snapshot document version.
const SnapshotVersion = 1

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Pillars
	AddPillar(models.Pillar) error
	GetPillar(id string) (models.Pillar, error)
	GetAllPillars() ([]models.Pillar, error)
	UpdatePillar(models.Pillar) error
	DeletePillar(id string) error

	// Categories
	AddCategory(models.Category) error
	GetCategory(id string) (models.Category, error)
	GetAllCategories() ([]models.Category, error)
	UpdateCategory(models.Category) error
	DeleteCategory(id string) error

	// Subcategories
	AddSubcategory(models.Subcategory) error
	GetSubcategory(id string) (models.Subcategory, error)
	GetSubcategories(categoryID string) ([]models.Subcategory, error)
	GetAllSubcategories() ([]models.Subcategory, error)
	DeleteSubcategory(id string) error

	// Plans
	SavePlan(models.DayPlan) error
	GetPlan(date string) (models.DayPlan, error)
	GetPlansBetween(start, end string) ([]models.DayPlan, error)

	// Logs
	AppendLog(models.LogEntry) error
	DeleteLog(id string) error
	GetLogsBetween(start, end string) ([]models.LogEntry, error)

	// Snapshot / bulk
	Snapshot() (Snapshot, error)
	ReplaceAll(Snapshot) error
	Reset() error

	// Utils
	GetConfigPath() string
}
