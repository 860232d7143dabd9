package migrations

import "gorm.io/gorm"

// Migration002AddChatIndexes adds the composite indexes every hot chat query
// leans on: history pagination by (conversation_key, created_at, id) and the
// unread-count scan per (conversation_key, receiver_id, is_read).
func Migration002AddChatIndexes() Migration {
	return Migration{
		ID:        "002_add_chat_indexes",
		Name:      "Add chat history and unread-count indexes",
		DependsOn: []string{"001_ensure_uuid_extension"},
		Up: func(db *gorm.DB) error {
			if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
				ON messages (conversation_key, created_at, id)`).Error; err != nil {
				return err
			}
			return db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_unread
				ON messages (conversation_key, receiver_id, is_read)`).Error
		},
		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_messages_conversation_created`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP INDEX IF EXISTS idx_messages_unread`).Error
		},
	}
}
