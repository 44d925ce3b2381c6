// Package graphstore optionally persists a case's CorrelationAnalysis into
// Neo4j as an Entity/Evidence graph, so an investigator can explore
// cross-evidence relationships with Cypher instead of only reading the
// generated report. Grounded on the teacher's internal/graph/neo4j_client.go
// connection/session lifecycle and internal/graph/cypher_builder.go's
// parameterized-query discipline; the teacher's Commit/File/Developer/PR
// code-graph schema is replaced by Entity/Evidence nodes and
// MENTIONED_IN/CORRELATES_WITH/CORROBORATES/CONTRADICTS edges.
package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/evidence-toolkit/evitool/internal/logging"
)

// Client wraps a Neo4j driver scoped to one database.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logging.Logger
}

// NewClient connects to uri and verifies connectivity before returning, so
// a misconfigured graph store fails fast rather than on first write.
func NewClient(ctx context.Context, uri, user, password string) (*Client, error) {
	if uri == "" || user == "" {
		return nil, fmt.Errorf("graphstore: uri and user are required")
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j at %s: %w", uri, err)
	}
	log := logging.With("component", "graphstore")
	log.Info("graphstore connected", "uri", uri, "database", "neo4j")
	return &Client{driver: driver, database: "neo4j", log: log}, nil
}

// Close closes the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// HealthCheck verifies connectivity without issuing a query.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graphstore health check failed: %w", err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database))
	if err != nil {
		return nil, fmt.Errorf("graphstore query failed: %w", err)
	}
	return result, nil
}
