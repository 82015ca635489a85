package common

import (
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a snowflake ID. The node index is randomized per process.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		source := rand.New(rand.NewSource(time.Now().UnixNano()))
		node, err := snowflake.NewNode(source.Int63n(1023))
		if err != nil {
			panic(err)
		}
		snowflakeNode = node
	})
	return snowflakeNode.Generate().Int64()
}
