package entity

type Notification struct {
	ID        int    `gorm:"primaryKey"`
	Content   string `gorm:"not null"`
	UserID    int    `gorm:"not null;index"` // recipient provider
	Read      bool   `gorm:"not null;default:false"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli;index"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:milli"`
}
