package account

import "time"

// Account is the persistence model for every identity in the system:
// self-registered users and admin-provisioned employees share the users table.
type Account struct {
	ID                  int64      `gorm:"primaryKey"`
	Name                string     `gorm:"column:name;not null"`
	Email               string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash        string     `gorm:"column:password_hash;not null"`
	ProfileImage        string     `gorm:"column:profile_image"`
	Role                string     `gorm:"column:role;not null;default:employee"`
	RefreshToken        *string    `gorm:"column:refresh_token"`
	OTP                 *string    `gorm:"column:otp"`
	OTPExpire           *time.Time `gorm:"column:otp_expire"`
	IsVerified          bool       `gorm:"column:is_verified;default:false"`
	IsActive            bool       `gorm:"column:is_active;default:true"`
	IsFirstLogin        bool       `gorm:"column:is_first_login;default:false"`
	LastPasswordChange  *time.Time `gorm:"column:last_password_change"`
	ResetPasswordToken  *string    `gorm:"column:reset_password_token"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire"`
	EmployeeID          *string    `gorm:"column:employee_id;uniqueIndex"`
	CreatedBy           *int64     `gorm:"column:created_by"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (Account) TableName() string {
	return "users"
}
