package common

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

func node() *snowflake.Node {
	snowflakeOnce.Do(func() {
		nodeID := int64(os.Getpid() % 1024)
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			n, _ = snowflake.NewNode(1)
		}
		snowflakeNode = n
	})
	return snowflakeNode
}

// UUIDint64 returns a snowflake-based unique int64 id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// NewID returns a snowflake-based unique id in decimal string form,
// the canonical id format for store rows.
func NewID() string {
	return node().Generate().String()
}

// IsStoreID reports whether s is a well-formed store row id
// (a positive decimal integer). Mock catalog ids deliberately fail this.
func IsStoreID(s string) bool {
	if s == "" {
		return false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return err == nil && v > 0
}

// RandomHex returns n random bytes as a hex string, used to prefix
// uploaded file names.
func RandomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}
