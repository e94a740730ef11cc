// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/worldsync/models"
)

// Store 玩家状态存储接口
// Save has merge semantics: fields absent from the update keep their stored
// value. Implementations must make Flush durable via an atomic replace (or
// the database's own transaction guarantees).
type Store interface {
	Load(playerKey string) (*models.PlayerSnapshot, error)
	Save(playerKey string, update models.PlayerUpdate) error
	Flush() error
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
