package entity

// User is owned by the identity service; this API only reads it.
type User struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	Provider  bool   `gorm:"not null;default:false"`
	AvatarID  *int
	CreatedAt int64 `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:milli"`
}

type UserSummary struct {
	ID     int
	Name   string
	Email  string
	Avatar *File
}
