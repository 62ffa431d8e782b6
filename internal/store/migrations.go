package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per driver run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			serial TEXT NOT NULL DEFAULT '',
			mirror TEXT NOT NULL CHECK(mirror IN ('mirrored', 'unmirrored')),
			frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Hand frames table - one row per localized hand per frame
		`CREATE TABLE IF NOT EXISTS hand_frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			hand_index INTEGER NOT NULL,
			label TEXT NOT NULL CHECK(label IN ('left', 'right')),
			anchor_x REAL NOT NULL,
			anchor_y REAL NOT NULL,
			anchor_z REAL NOT NULL,
			landmarks TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE(session_id, seq, hand_index)
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_hand_frames_session_id ON hand_frames(session_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
