package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pillarlog/pillarlog/internal/models"
	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version so later releases can
// migrate in place.
const schemaVersion = 1

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.createSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		settings := models.Settings{}
		models.ApplyDefaultSettings(&settings)
		if err := s.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'pillarlog init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version < schemaVersion {
		// Forward-create anything missing; all statements are idempotent.
		if err := s.createSchema(); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) createSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pillars (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			pillar_id TEXT NOT NULL,
			name TEXT NOT NULL,
			recurrence TEXT NOT NULL,
			weekly_day INTEGER NOT NULL DEFAULT 0,
			default_start TEXT,
			default_end TEXT,
			is_special INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subcategories (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			name TEXT NOT NULL,
			default_start TEXT,
			default_end TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			date TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS day_items (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			seq INTEGER NOT NULL,
			pillar_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			subcategory_id TEXT,
			title TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			minutes INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			rating TEXT,
			is_special INTEGER NOT NULL DEFAULT 0,
			log_id TEXT,
			completed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			pillar_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			subcategory_id TEXT,
			rating TEXT NOT NULL,
			minutes INTEGER NOT NULL DEFAULT 0,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_pillar ON categories(pillar_id)`,
		`CREATE INDEX IF NOT EXISTS idx_subcategories_category ON subcategories(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_day_items_date ON day_items(date)`,
		`CREATE INDEX IF NOT EXISTS idx_log_entries_date ON log_entries(date)`,
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings: %w", ErrNotFound)
	}

	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *SQLiteStore) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value,
		); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AddPillar(p models.Pillar) error {
	_, err := s.db.Exec(
		"INSERT INTO pillars (id, name, color, sort_order, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Color, p.Order, p.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) GetPillar(id string) (models.Pillar, error) {
	row := s.db.QueryRow("SELECT id, name, color, sort_order, created_at FROM pillars WHERE id = ?", id)
	p, err := scanPillar(row)
	if err == sql.ErrNoRows {
		return models.Pillar{}, fmt.Errorf("pillar %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *SQLiteStore) GetAllPillars() ([]models.Pillar, error) {
	rows, err := s.db.Query("SELECT id, name, color, sort_order, created_at FROM pillars ORDER BY sort_order, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Pillar
	for rows.Next() {
		p, err := scanPillar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdatePillar(p models.Pillar) error {
	res, err := s.db.Exec(
		"UPDATE pillars SET name = ?, color = ?, sort_order = ? WHERE id = ?",
		p.Name, p.Color, p.Order, p.ID,
	)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("pillar %s", p.ID))
}

func (s *SQLiteStore) DeletePillar(id string) error {
	res, err := s.db.Exec("DELETE FROM pillars WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("pillar %s", id))
}

func (s *SQLiteStore) AddCategory(c models.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, pillar_id, name, recurrence, weekly_day, default_start, default_end, is_special, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PillarID, c.Name, c.Recurrence, int(c.WeeklyDay), c.DefaultStart, c.DefaultEnd, c.IsSpecial,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) GetCategory(id string) (models.Category, error) {
	row := s.db.QueryRow(`
		SELECT id, pillar_id, name, recurrence, weekly_day, default_start, default_end, is_special, created_at
		FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *SQLiteStore) GetAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, pillar_id, name, recurrence, weekly_day, default_start, default_end, is_special, created_at
		FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateCategory(c models.Category) error {
	res, err := s.db.Exec(`
		UPDATE categories
		SET pillar_id = ?, name = ?, recurrence = ?, weekly_day = ?, default_start = ?, default_end = ?, is_special = ?
		WHERE id = ?`,
		c.PillarID, c.Name, c.Recurrence, int(c.WeeklyDay), c.DefaultStart, c.DefaultEnd, c.IsSpecial, c.ID,
	)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("category %s", c.ID))
}

func (s *SQLiteStore) DeleteCategory(id string) error {
	res, err := s.db.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("category %s", id))
}

func (s *SQLiteStore) AddSubcategory(sub models.Subcategory) error {
	_, err := s.db.Exec(`
		INSERT INTO subcategories (id, category_id, name, default_start, default_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.CategoryID, sub.Name, sub.DefaultStart, sub.DefaultEnd,
		sub.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) GetSubcategory(id string) (models.Subcategory, error) {
	row := s.db.QueryRow(`
		SELECT id, category_id, name, default_start, default_end, created_at
		FROM subcategories WHERE id = ?`, id)
	sub, err := scanSubcategory(row)
	if err == sql.ErrNoRows {
		return models.Subcategory{}, fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
	}
	return sub, err
}

func (s *SQLiteStore) GetSubcategories(categoryID string) ([]models.Subcategory, error) {
	return s.querySubcategories(
		`SELECT id, category_id, name, default_start, default_end, created_at
		 FROM subcategories WHERE category_id = ? ORDER BY rowid`, categoryID)
}

func (s *SQLiteStore) GetAllSubcategories() ([]models.Subcategory, error) {
	return s.querySubcategories(
		`SELECT id, category_id, name, default_start, default_end, created_at
		 FROM subcategories ORDER BY rowid`)
}

func (s *SQLiteStore) querySubcategories(query string, args ...any) ([]models.Subcategory, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Subcategory
	for rows.Next() {
		sub, err := scanSubcategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSubcategory(id string) error {
	res, err := s.db.Exec("DELETE FROM subcategories WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("subcategory %s", id))
}

func (s *SQLiteStore) SavePlan(plan models.DayPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO plans (date, created_at) VALUES (?, ?)",
		plan.Date, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM day_items WHERE date = ?", plan.Date); err != nil {
		return err
	}

	for seq, item := range plan.Items {
		var completedAt sql.NullString
		if item.CompletedAt != nil {
			completedAt = sql.NullString{String: item.CompletedAt.UTC().Format(time.RFC3339), Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO day_items (id, date, seq, pillar_id, category_id, subcategory_id, title,
				start_time, end_time, minutes, status, rating, is_special, log_id, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, plan.Date, seq, item.PillarID, item.CategoryID, item.SubcategoryID, item.Title,
			item.Start, item.End, item.Minutes, item.Status, string(item.Rating), item.IsSpecial,
			item.LogID, completedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetPlan(date string) (models.DayPlan, error) {
	var planDate string
	err := s.db.QueryRow("SELECT date FROM plans WHERE date = ?", date).Scan(&planDate)
	if err == sql.ErrNoRows {
		return models.DayPlan{}, fmt.Errorf("plan for %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return models.DayPlan{}, err
	}

	items, err := s.queryItems("SELECT "+dayItemColumns+" FROM day_items WHERE date = ? ORDER BY seq", date)
	if err != nil {
		return models.DayPlan{}, err
	}
	return models.DayPlan{Date: date, Items: items}, nil
}

func (s *SQLiteStore) GetPlansBetween(start, end string) ([]models.DayPlan, error) {
	query := "SELECT date FROM plans"
	var conds []string
	var args []any
	if start != "" {
		conds = append(conds, "date >= ?")
		args = append(args, start)
	}
	if end != "" {
		conds = append(conds, "date <= ?")
		args = append(args, end)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []models.DayPlan
	for _, date := range dates {
		plan, err := s.GetPlan(date)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, nil
}

const dayItemColumns = `id, date, pillar_id, category_id, subcategory_id, title,
	start_time, end_time, minutes, status, rating, is_special, log_id, completed_at`

func (s *SQLiteStore) queryItems(query string, args ...any) ([]models.DayItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DayItem
	for rows.Next() {
		var item models.DayItem
		var subcategoryID, start, end, rating, logID, completedAt sql.NullString
		if err := rows.Scan(
			&item.ID, &item.Date, &item.PillarID, &item.CategoryID, &subcategoryID, &item.Title,
			&start, &end, &item.Minutes, &item.Status, &rating, &item.IsSpecial, &logID, &completedAt,
		); err != nil {
			return nil, err
		}
		item.SubcategoryID = subcategoryID.String
		item.Start = start.String
		item.End = end.String
		item.Rating = models.Rating(rating.String)
		item.LogID = logID.String
		if completedAt.Valid && completedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
				item.CompletedAt = &t
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendLog(entry models.LogEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO log_entries (id, date, pillar_id, category_id, subcategory_id, rating, minutes, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Date, entry.PillarID, entry.CategoryID, entry.SubcategoryID,
		entry.Rating, entry.Minutes, entry.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) DeleteLog(id string) error {
	res, err := s.db.Exec("DELETE FROM log_entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("log entry %s", id))
}

func (s *SQLiteStore) GetLogsBetween(start, end string) ([]models.LogEntry, error) {
	query := "SELECT id, date, pillar_id, category_id, subcategory_id, rating, minutes, timestamp FROM log_entries"
	var conds []string
	var args []any
	if start != "" {
		conds = append(conds, "date >= ?")
		args = append(args, start)
	}
	if end != "" {
		conds = append(conds, "date <= ?")
		args = append(args, end)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date, timestamp"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var subcategoryID sql.NullString
		var ts string
		if err := rows.Scan(
			&entry.ID, &entry.Date, &entry.PillarID, &entry.CategoryID, &subcategoryID,
			&entry.Rating, &entry.Minutes, &ts,
		); err != nil {
			return nil, err
		}
		entry.SubcategoryID = subcategoryID.String
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = t
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Snapshot() (Snapshot, error) {
	snap := Snapshot{Version: SnapshotVersion, Plans: make(map[string]models.DayPlan)}

	settings, err := s.GetSettings()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Settings = settings

	if snap.Pillars, err = s.GetAllPillars(); err != nil {
		return Snapshot{}, err
	}
	if snap.Categories, err = s.GetAllCategories(); err != nil {
		return Snapshot{}, err
	}
	if snap.Subcategories, err = s.GetAllSubcategories(); err != nil {
		return Snapshot{}, err
	}

	plans, err := s.GetPlansBetween("", "")
	if err != nil {
		return Snapshot{}, err
	}
	for _, plan := range plans {
		snap.Plans[plan.Date] = plan
	}

	if snap.Logs, err = s.GetLogsBetween("", ""); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func (s *SQLiteStore) ReplaceAll(snap Snapshot) error {
	if err := s.clearDomainTables(); err != nil {
		return err
	}

	settings := snap.Settings
	models.ApplyDefaultSettings(&settings)
	if err := s.SaveSettings(settings); err != nil {
		return err
	}
	for _, p := range snap.Pillars {
		if err := s.AddPillar(p); err != nil {
			return err
		}
	}
	for _, c := range snap.Categories {
		if err := s.AddCategory(c); err != nil {
			return err
		}
	}
	for _, sub := range snap.Subcategories {
		if err := s.AddSubcategory(sub); err != nil {
			return err
		}
	}
	for _, plan := range snap.Plans {
		if err := s.SavePlan(plan); err != nil {
			return err
		}
	}
	for _, entry := range snap.Logs {
		if err := s.AppendLog(entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Reset() error {
	return s.clearDomainTables()
}

func (s *SQLiteStore) clearDomainTables() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"pillars", "categories", "subcategories", "plans", "day_items", "log_entries"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPillar(row rowScanner) (models.Pillar, error) {
	var p models.Pillar
	var color sql.NullString
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &color, &p.Order, &createdAt); err != nil {
		return models.Pillar{}, err
	}
	p.Color = color.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	var defaultStart, defaultEnd sql.NullString
	var weeklyDay int
	var createdAt string
	if err := row.Scan(
		&c.ID, &c.PillarID, &c.Name, &c.Recurrence, &weeklyDay,
		&defaultStart, &defaultEnd, &c.IsSpecial, &createdAt,
	); err != nil {
		return models.Category{}, err
	}
	c.WeeklyDay = time.Weekday(weeklyDay)
	c.DefaultStart = defaultStart.String
	c.DefaultEnd = defaultEnd.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		c.CreatedAt = t
	}
	return c, nil
}

func scanSubcategory(row rowScanner) (models.Subcategory, error) {
	var sub models.Subcategory
	var defaultStart, defaultEnd sql.NullString
	var createdAt string
	if err := row.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &defaultStart, &defaultEnd, &createdAt); err != nil {
		return models.Subcategory{}, err
	}
	sub.DefaultStart = defaultStart.String
	sub.DefaultEnd = defaultEnd.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		sub.CreatedAt = t
	}
	return sub, nil
}

func requireRows(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
