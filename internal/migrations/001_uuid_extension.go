package migrations

import "gorm.io/gorm"

// Migration001EnsureUUIDExtension enables uuid-ossp so legacy rows created
// before the backend assigned ids keep their server-side default.
func Migration001EnsureUUIDExtension() Migration {
	return Migration{
		ID:   "001_ensure_uuid_extension",
		Name: "Ensure uuid-ossp extension exists",
		Up: func(db *gorm.DB) error {
			if db.Dialector.Name() != "postgres" {
				return nil
			}
			return db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
		},
		Down: func(db *gorm.DB) error {
			return nil
		},
	}
}
