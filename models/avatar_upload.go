package models

import "time"

// AvatarUpload records avatar files written to local object storage. An
// upload starts unclaimed; claiming happens when the file becomes a user's
// active avatar. Unclaimed rows past ExpireAt are swept together with their
// files by the scheduled cleaner.
type AvatarUpload struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"` // filesystem path
	URL       string    `gorm:"size:1024;not null" json:"url"`       // public URL like /static/avatars/...
	Claimed   bool      `gorm:"default:false" json:"claimed"`
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
