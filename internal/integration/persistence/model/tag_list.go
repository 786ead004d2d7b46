package model

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// TagList stores free-form transaction tags. Postgres keeps them in a native
// text[] column; other dialects store the same array literal as text.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*t = TagList(arr)
	return nil
}

// GormDataType keeps GORM from treating the slice as a relationship.
func (TagList) GormDataType() string {
	return "tags"
}

// GormDBDataType picks the column type per dialect.
func (TagList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
