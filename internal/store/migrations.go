package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sections table - selectable map regions, hit-tested in position order
		`CREATE TABLE IF NOT EXISTS sections (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			width REAL NOT NULL CHECK(width > 0),
			height REAL NOT NULL CHECK(height > 0),
			crop_src TEXT NOT NULL DEFAULT '',
			crop_x0 REAL NOT NULL DEFAULT 0,
			crop_y0 REAL NOT NULL DEFAULT 0,
			has_3d INTEGER NOT NULL DEFAULT 0,
			model_src TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sections_position ON sections(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
