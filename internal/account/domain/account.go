package domain

import "time"

// Account 是节点的账号档案：实体状态在 mongo，账号台账在 mysql。
type Account struct {
	UId      int       `gorm:"column:uid;primaryKey;autoIncrement;comment:账号ID" json:"uid"`
	Username string    `gorm:"column:username;type:varchar(32);uniqueIndex;not null;comment:节点名" json:"username" validate:"min=2,max=32,regexp=^[a-zA-Z0-9_]*$"`
	Status   int       `gorm:"column:status;default:1;comment:状态 1正常 0禁用" json:"status"`
	Ctime    time.Time `gorm:"column:ctime;autoCreateTime;comment:创建时间" json:"ctime"`
	Mtime    time.Time `gorm:"column:mtime;autoUpdateTime;comment:更新时间" json:"mtime"`
}

func (Account) TableName() string {
	return "node_account"
}

func (a Account) Disabled() bool {
	return a.Status == 0
}
