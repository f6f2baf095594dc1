package database

import "interu/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.SkillPost{},
		&models.ExchangeChat{},
		&models.ChatParticipant{},
		&models.ChatMessage{},
		&models.Rating{},
		&models.Notification{},
		&models.Report{},
	}
}
