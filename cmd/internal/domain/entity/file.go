package entity

import "strings"

type File struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Path      string `gorm:"not null;uniqueIndex"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:milli"`
}

// URL is where the static file handler serves this file.
func (f *File) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/files/" + f.Path
}
