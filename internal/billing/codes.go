package billing

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// CodeGenerator produces human-shareable bill codes.
type CodeGenerator interface {
	NextCode() string
}

// SnowflakeCodes derives bill codes from snowflake IDs. Codes are time ordered
// and unique per node, so no collision retry is needed as long as every
// running instance has its own node ID.
type SnowflakeCodes struct {
	node *snowflake.Node
}

// NewSnowflakeCodes creates a generator for the given node (0-1023).
func NewSnowflakeCodes(nodeID int64) (*SnowflakeCodes, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeCodes{node: node}, nil
}

func (g *SnowflakeCodes) NextCode() string {
	return "BILL-" + strings.ToUpper(g.node.Generate().Base36())
}
