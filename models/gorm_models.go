// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormPlayerState 玩家持久化模型
type GormPlayerState struct {
	gorm.Model
	PlayerKey string                 `gorm:"uniqueIndex;not null"`
	Data      map[string]interface{} `gorm:"type:jsonb"`
}
