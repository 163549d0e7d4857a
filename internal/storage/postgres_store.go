package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/pillarlog/pillarlog/internal/models"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	// ErrEmbeddedCredentials rejects passwords inside the connection string;
	// use PGPASSWORD or ~/.pgpass instead.
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")
)

// PostgresStore backs a shared deployment (e.g. a home server reached by
// several devices). Schema mirrors the SQLite store with $n placeholders
// and a BIGSERIAL insertion-order column where SQLite relies on rowid.
type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{connStr: connStr}
}

func validateConnStr(connStr string) error {
	u, err := url.Parse(connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%w: scheme must be postgres://", ErrInvalidConnectionString)
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			return ErrEmbeddedCredentials
		}
	}
	return nil
}

func (s *PostgresStore) open() error {
	if s.db != nil {
		return nil
	}
	if err := validateConnStr(s.connStr); err != nil {
		return err
	}
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	if err := s.createSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.GetSettings(); err != nil {
		settings := models.Settings{}
		models.ApplyDefaultSettings(&settings)
		if err := s.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Load() error {
	if err := s.open(); err != nil {
		return err
	}
	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'settings')",
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("storage not initialized, run 'pillarlog init' first")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) createSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pillars (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			pillar_id TEXT NOT NULL,
			name TEXT NOT NULL,
			recurrence TEXT NOT NULL,
			weekly_day INTEGER NOT NULL DEFAULT 0,
			default_start TEXT,
			default_end TEXT,
			is_special BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subcategories (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			name TEXT NOT NULL,
			default_start TEXT,
			default_end TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			date TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL
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
			is_special BOOLEAN NOT NULL DEFAULT FALSE,
			log_id TEXT,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			pillar_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			subcategory_id TEXT,
			rating TEXT NOT NULL,
			minutes INTEGER NOT NULL DEFAULT 0,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_items_date ON day_items(date)`,
		`CREATE INDEX IF NOT EXISTS idx_log_entries_date ON log_entries(date)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) GetSettings() (models.Settings, error) {
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

func (s *PostgresStore) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value,
		); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) AddPillar(p models.Pillar) error {
	_, err := s.db.Exec(
		"INSERT INTO pillars (id, name, color, sort_order, created_at) VALUES ($1, $2, $3, $4, $5)",
		p.ID, p.Name, p.Color, p.Order, p.CreatedAt.UTC(),
	)
	return err
}

func (s *PostgresStore) GetPillar(id string) (models.Pillar, error) {
	var p models.Pillar
	var color sql.NullString
	err := s.db.QueryRow(
		"SELECT id, name, color, sort_order, created_at FROM pillars WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &color, &p.Order, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Pillar{}, fmt.Errorf("pillar %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Pillar{}, err
	}
	p.Color = color.String
	return p, nil
}

func (s *PostgresStore) GetAllPillars() ([]models.Pillar, error) {
	rows, err := s.db.Query("SELECT id, name, color, sort_order, created_at FROM pillars ORDER BY sort_order, seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Pillar
	for rows.Next() {
		var p models.Pillar
		var color sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &color, &p.Order, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Color = color.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdatePillar(p models.Pillar) error {
	res, err := s.db.Exec(
		"UPDATE pillars SET name = $1, color = $2, sort_order = $3 WHERE id = $4",
		p.Name, p.Color, p.Order, p.ID,
	)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("pillar %s", p.ID))
}

func (s *PostgresStore) DeletePillar(id string) error {
	res, err := s.db.Exec("DELETE FROM pillars WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("pillar %s", id))
}

func (s *PostgresStore) AddCategory(c models.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, pillar_id, name, recurrence, weekly_day, default_start, default_end, is_special, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.PillarID, c.Name, c.Recurrence, int(c.WeeklyDay), c.DefaultStart, c.DefaultEnd, c.IsSpecial, c.CreatedAt.UTC(),
	)
	return err
}

func (s *PostgresStore) GetCategory(id string) (models.Category, error) {
	row := s.db.QueryRow(`
		SELECT id, pillar_id, name, recurrence, weekly_day, default_start, default_end, is_special, created_at
		FROM categories WHERE id = $1`, id)
	c, err := scanPgCategory(row)
	if err == sql.ErrNoRows {
		return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *PostgresStore) GetAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, pillar_id, name, recurrence, weekly_day, default_start, default_end, is_special, created_at
		FROM categories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		c, err := scanPgCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCategory(c models.Category) error {
	res, err := s.db.Exec(`
		UPDATE categories
		SET pillar_id = $1, name = $2, recurrence = $3, weekly_day = $4, default_start = $5, default_end = $6, is_special = $7
		WHERE id = $8`,
		c.PillarID, c.Name, c.Recurrence, int(c.WeeklyDay), c.DefaultStart, c.DefaultEnd, c.IsSpecial, c.ID,
	)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("category %s", c.ID))
}

func (s *PostgresStore) DeleteCategory(id string) error {
	res, err := s.db.Exec("DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("category %s", id))
}

func (s *PostgresStore) AddSubcategory(sub models.Subcategory) error {
	_, err := s.db.Exec(`
		INSERT INTO subcategories (id, category_id, name, default_start, default_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.CategoryID, sub.Name, sub.DefaultStart, sub.DefaultEnd, sub.CreatedAt.UTC(),
	)
	return err
}

func (s *PostgresStore) GetSubcategory(id string) (models.Subcategory, error) {
	row := s.db.QueryRow(`
		SELECT id, category_id, name, default_start, default_end, created_at
		FROM subcategories WHERE id = $1`, id)
	sub, err := scanPgSubcategory(row)
	if err == sql.ErrNoRows {
		return models.Subcategory{}, fmt.Errorf("subcategory %s: %w", id, ErrNotFound)
	}
	return sub, err
}

func (s *PostgresStore) GetSubcategories(categoryID string) ([]models.Subcategory, error) {
	return s.querySubcategories(`
		SELECT id, category_id, name, default_start, default_end, created_at
		FROM subcategories WHERE category_id = $1 ORDER BY seq`, categoryID)
}

func (s *PostgresStore) GetAllSubcategories() ([]models.Subcategory, error) {
	return s.querySubcategories(`
		SELECT id, category_id, name, default_start, default_end, created_at
		FROM subcategories ORDER BY seq`)
}

func (s *PostgresStore) querySubcategories(query string, args ...any) ([]models.Subcategory, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Subcategory
	for rows.Next() {
		sub, err := scanPgSubcategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteSubcategory(id string) error {
	res, err := s.db.Exec("DELETE FROM subcategories WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("subcategory %s", id))
}

func (s *PostgresStore) SavePlan(plan models.DayPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO plans (date, created_at) VALUES ($1, $2)
		ON CONFLICT (date) DO NOTHING`, plan.Date, time.Now().UTC(),
	); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM day_items WHERE date = $1", plan.Date); err != nil {
		return err
	}

	for seq, item := range plan.Items {
		var completedAt sql.NullTime
		if item.CompletedAt != nil {
			completedAt = sql.NullTime{Time: item.CompletedAt.UTC(), Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO day_items (id, date, seq, pillar_id, category_id, subcategory_id, title,
				start_time, end_time, minutes, status, rating, is_special, log_id, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			item.ID, plan.Date, seq, item.PillarID, item.CategoryID, item.SubcategoryID, item.Title,
			item.Start, item.End, item.Minutes, item.Status, string(item.Rating), item.IsSpecial,
			item.LogID, completedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetPlan(date string) (models.DayPlan, error) {
	var planDate string
	err := s.db.QueryRow("SELECT date FROM plans WHERE date = $1", date).Scan(&planDate)
	if err == sql.ErrNoRows {
		return models.DayPlan{}, fmt.Errorf("plan for %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return models.DayPlan{}, err
	}

	rows, err := s.db.Query(`
		SELECT id, date, pillar_id, category_id, subcategory_id, title,
			start_time, end_time, minutes, status, rating, is_special, log_id, completed_at
		FROM day_items WHERE date = $1 ORDER BY seq`, date)
	if err != nil {
		return models.DayPlan{}, err
	}
	defer rows.Close()

	plan := models.DayPlan{Date: date}
	for rows.Next() {
		var item models.DayItem
		var subcategoryID, start, end, rating, logID sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.Date, &item.PillarID, &item.CategoryID, &subcategoryID, &item.Title,
			&start, &end, &item.Minutes, &item.Status, &rating, &item.IsSpecial, &logID, &completedAt,
		); err != nil {
			return models.DayPlan{}, err
		}
		item.SubcategoryID = subcategoryID.String
		item.Start = start.String
		item.End = end.String
		item.Rating = models.Rating(rating.String)
		item.LogID = logID.String
		if completedAt.Valid {
			t := completedAt.Time
			item.CompletedAt = &t
		}
		plan.Items = append(plan.Items, item)
	}
	return plan, rows.Err()
}

func (s *PostgresStore) GetPlansBetween(start, end string) ([]models.DayPlan, error) {
	query := "SELECT date FROM plans"
	var conds []string
	var args []any
	if start != "" {
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if end != "" {
		args = append(args, end)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
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

func (s *PostgresStore) AppendLog(entry models.LogEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO log_entries (id, date, pillar_id, category_id, subcategory_id, rating, minutes, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Date, entry.PillarID, entry.CategoryID, entry.SubcategoryID,
		entry.Rating, entry.Minutes, entry.Timestamp.UTC(),
	)
	return err
}

func (s *PostgresStore) DeleteLog(id string) error {
	res, err := s.db.Exec("DELETE FROM log_entries WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRows(res, fmt.Sprintf("log entry %s", id))
}

func (s *PostgresStore) GetLogsBetween(start, end string) ([]models.LogEntry, error) {
	query := "SELECT id, date, pillar_id, category_id, subcategory_id, rating, minutes, timestamp FROM log_entries"
	var conds []string
	var args []any
	if start != "" {
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if end != "" {
		args = append(args, end)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
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
		if err := rows.Scan(
			&entry.ID, &entry.Date, &entry.PillarID, &entry.CategoryID, &subcategoryID,
			&entry.Rating, &entry.Minutes, &entry.Timestamp,
		); err != nil {
			return nil, err
		}
		entry.SubcategoryID = subcategoryID.String
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Snapshot() (Snapshot, error) {
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

func (s *PostgresStore) ReplaceAll(snap Snapshot) error {
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

func (s *PostgresStore) Reset() error {
	return s.clearDomainTables()
}

func (s *PostgresStore) clearDomainTables() error {
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

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}

func scanPgCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	var defaultStart, defaultEnd sql.NullString
	var weeklyDay int
	if err := row.Scan(
		&c.ID, &c.PillarID, &c.Name, &c.Recurrence, &weeklyDay,
		&defaultStart, &defaultEnd, &c.IsSpecial, &c.CreatedAt,
	); err != nil {
		return models.Category{}, err
	}
	c.WeeklyDay = time.Weekday(weeklyDay)
	c.DefaultStart = defaultStart.String
	c.DefaultEnd = defaultEnd.String
	return c, nil
}

func scanPgSubcategory(row rowScanner) (models.Subcategory, error) {
	var sub models.Subcategory
	var defaultStart, defaultEnd sql.NullString
	if err := row.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &defaultStart, &defaultEnd, &sub.CreatedAt); err != nil {
		return models.Subcategory{}, err
	}
	sub.DefaultStart = defaultStart.String
	sub.DefaultEnd = defaultEnd.String
	return sub, nil
}
