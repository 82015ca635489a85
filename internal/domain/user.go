package domain

import "time"

// SysUser is a backend operator account. Login accepts either username or
// email; passwords are stored bcrypt-hashed.
type SysUser struct {
	ID        int64     `json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex;size:128" json:"username" form:"username"`
	Fullname  string    `json:"fullname" form:"fullname"`
	Email     string    `gorm:"uniqueIndex;size:256" json:"email" form:"email"`
	Password  string    `json:"-"`
	Level     string    `gorm:"size:32" json:"level" form:"level"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}
