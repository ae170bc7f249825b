package cache

import "fmt"

type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityWallet  EntityType = "wallet"
	EntityWebhook EntityType = "webhook"
)

type KeyType string

const (
	KeySession KeyType = "session"
	KeyUser    KeyType = "user"
	KeyEvent   KeyType = "event"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}
