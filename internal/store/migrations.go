package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Finger-vector bindings per mode
		`CREATE TABLE IF NOT EXISTS bindings (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			pattern TEXT NOT NULL CHECK(length(pattern) = 5),
			label TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(mode, pattern)
		)`,

		// Landmark-distance rules, checked before bindings
		`CREATE TABLE IF NOT EXISTS pinch_rules (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			point_a INTEGER NOT NULL,
			point_b INTEGER NOT NULL,
			max_distance REAL NOT NULL CHECK(max_distance > 0),
			label TEXT NOT NULL,
			require_up TEXT NOT NULL DEFAULT '00000',
			priority INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Session lifecycle log
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			deck TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			stopped_at DATETIME,
			outcome TEXT NOT NULL DEFAULT 'running',
			error TEXT NOT NULL DEFAULT '',
			frames INTEGER NOT NULL DEFAULT 0
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bindings_mode ON bindings(mode, priority)`,
		`CREATE INDEX IF NOT EXISTS idx_pinch_rules_mode ON pinch_rules(mode, priority)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
