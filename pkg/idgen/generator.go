package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique, roughly time-ordered identifiers.
type Generator interface {
	NewID() string
}

type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for one server instance.
// nodeID must be unique per instance (0-1023) or ids may collide.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Snowflake{node: node}, nil
}

// NewID returns the next id in its decimal string form. snowflake.Node is safe for concurrent use.
func (g *Snowflake) NewID() string {
	return g.node.Generate().String()
}
