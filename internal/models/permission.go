package models

// Permission is a read-mostly capability record, seeded at startup and
// attached to users directly or through groups.
type Permission struct {
	Base
	Codename string `gorm:"size:100;uniqueIndex;not null" json:"codename"`
	Name     string `gorm:"size:255;not null" json:"name"`
}
