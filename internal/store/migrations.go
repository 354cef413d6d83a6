package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Label events table - one row per classified label change
		`CREATE TABLE IF NOT EXISTS label_events (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			previous TEXT NOT NULL DEFAULT '',
			theme TEXT NOT NULL DEFAULT '',
			hands INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_label_events_created_at ON label_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_label_events_label ON label_events(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
