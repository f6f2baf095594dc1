package database

import (
	"interu/internal/models"

	"gorm.io/gorm"
)

// UniqueGuard is a unique key the exchange workflow relies on to reject the
// losing side of a concurrent write.
type UniqueGuard struct {
	Model   interface{}
	Index   string
	Columns string
	Purpose string
}

// UniqueGuards lists the keys both schema paths must create: the embedded
// SQL migration and the GORM tags on the models.
var UniqueGuards = []UniqueGuard{
	{&models.ChatParticipant{}, "idx_chat_participants_chat_user", "chat_participants(chat_id, user_id)", "one participant row per identity and chat"},
	{&models.Rating{}, "idx_ratings_chat_rater", "ratings(chat_id, rater_id)", "one rating per rater and chat"},
	{&models.Profile{}, "idx_profiles_user_id", "profiles(user_id)", "one profile per identity"},
}

// MissingGuards returns the guards whose index is absent from db.
func MissingGuards(db *gorm.DB) []UniqueGuard {
	m := db.Migrator()
	var missing []UniqueGuard
	for _, g := range UniqueGuards {
		if !m.HasIndex(g.Model, g.Index) {
			missing = append(missing, g)
		}
	}
	return missing
}
