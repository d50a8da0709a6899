package uid

import (
	"crypto/rand"
	"math/big"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator on a random node number.
func NewSnowflake() (*Snowflake, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<snowflake.NodeBits))
	if err != nil {
		return nil, err
	}

	return NewSnowflakeWithNode(n.Int64())
}

// NewSnowflakeWithNode builds a generator on a fixed node number.
func NewSnowflakeWithNode(node int64) (*Snowflake, error) {
	sn, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: sn}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
