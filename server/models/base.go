package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Number of rows shown in the dashboard's "recent" panels.
const RECENT_ROWS = 2

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at desc").Order("id desc")
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// deleteByID deletes the row with the given id and reports gorm.ErrRecordNotFound
// when nothing matched.
func deleteByID(tx *gorm.DB, model interface{}, id interface{}) error {
	res := tx.Delete(model, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func deleteAll(model interface{}) (int64, error) {
	res := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
	return res.RowsAffected, res.Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
