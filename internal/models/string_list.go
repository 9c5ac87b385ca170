package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is an ordered list of strings stored as a native varchar[] on
// PostgreSQL and as the array literal in a text column elsewhere.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return pq.StringArray(l).Value()
}

func (l *StringList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if arr == nil {
		*l = nil
		return nil
	}
	*l = StringList(arr)
	return nil
}

func (StringList) GormDataType() string {
	return "string_list"
}

func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "varchar[]"
	}
	return "text"
}
