package domain

// User 表示红人在关系库中的用户行。
// UserID 为库内主键，RedID 为顺序分配的红人编号，SupabaseUserID 为外部身份
// 提供方的用户标识（所有权列）。
type User struct {
	UserID                uint64 `json:"userId" gorm:"column:user_id;primaryKey;autoIncrement"`
	SupabaseUserID        string `json:"supabaseUserId" gorm:"type:varchar(36);uniqueIndex;not null"`
	RedID                 uint64 `json:"redId" gorm:"column:red_id"`
	LoginEmail            string `json:"loginEmail" gorm:"type:varchar(255)"`
	ShippingFullName      string `json:"shippingFullName" gorm:"type:varchar(255)"`
	ShippingCountry       string `json:"shippingCountry" gorm:"type:varchar(100)"`
	ShippingStateProvince string `json:"shippingStateProvince" gorm:"type:varchar(100)"`
	ShippingCity          string `json:"shippingCity" gorm:"type:varchar(100)"`
	ShippingAddressLine   string `json:"shippingAddressLine" gorm:"type:varchar(512)"`
	ShippingPostZipCode   string `json:"shippingPostZipCode" gorm:"type:varchar(32)"`
	ShippingTelephone     string `json:"shippingTelephone" gorm:"type:varchar(64)"`
	PaymentMethod         string `json:"paymentMethod" gorm:"type:varchar(64)"`
	PaymentAccount        string `json:"paymentAccount" gorm:"type:varchar(255)"`
}

// TableName 与历史库表名保持一致
func (User) TableName() string {
	return "t_red_user"
}

// IsInitialized 判断寄样与收款信息是否已填写完整
func (u *User) IsInitialized() bool {
	return u.ShippingFullName != "" &&
		u.ShippingCountry != "" &&
		u.ShippingCity != "" &&
		u.ShippingAddressLine != "" &&
		u.ShippingTelephone != "" &&
		u.PaymentMethod != "" &&
		u.PaymentAccount != ""
}
