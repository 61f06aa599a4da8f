// Package auditlog persists a moderation audit trail in Neo4j.
package auditlog

import (
	"fmt"
	"os"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jClient handles communication with Neo4j.
type Neo4jClient struct {
	driver neo4j.Driver
}

// NewNeo4jClient creates a new Neo4jClient from NEO4J_* environment variables.
func NewNeo4jClient() (*Neo4jClient, error) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "neo4j://neo4j:7687"
	}
	user := os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")
	if password == "" {
		password = "password"
	}

	driver, err := neo4j.NewDriver(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver creation failed: %w", err)
	}

	if err := driver.VerifyConnectivity(); err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("neo4j connectivity test failed: %w", err)
	}

	return &Neo4jClient{driver: driver}, nil
}

// RecordAction stores one moderation action as an Action node linked to the
// acting moderator and the targeted player.
func (n *Neo4jClient) RecordAction(actionID, actionType, moderator, player string, timestamp time.Time, details map[string]interface{}) error {
	session := n.driver.NewSession(neo4j.SessionConfig{DatabaseName: "neo4j"})
	defer session.Close()

	query := `
MERGE (p:Player {name: $player})
MERGE (m:Moderator {name: $moderator})
MERGE (a:Action {id: $action_id})
SET a.type = $action_type,
    a.timestamp = $timestamp,
    a += $details
MERGE (m)-[:ISSUED]->(a)
MERGE (a)-[:TARGETED]->(p)
RETURN a
`

	_, err := session.Run(query, map[string]any{
		"action_id":   actionID,
		"action_type": actionType,
		"moderator":   moderator,
		"player":      player,
		"timestamp":   timestamp.UTC().Format(time.RFC3339),
		"details":     details,
	})
	return err
}

// PlayerHistory returns the moderation actions recorded against a player,
// newest first.
func (n *Neo4jClient) PlayerHistory(player string) ([]map[string]interface{}, error) {
	session := n.driver.NewSession(neo4j.SessionConfig{DatabaseName: "neo4j"})
	defer session.Close()

	query := `
MATCH (m:Moderator)-[:ISSUED]->(a:Action)-[:TARGETED]->(p:Player {name: $player})
RETURN a.id AS id, a.type AS type, a.timestamp AS timestamp, m.name AS moderator
ORDER BY a.timestamp DESC
`

	result, err := session.Run(query, map[string]any{"player": player})
	if err != nil {
		return nil, err
	}

	var actions []map[string]interface{}
	for result.Next() {
		record := result.Record()
		action := make(map[string]interface{}, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			action[key] = value
		}
		actions = append(actions, action)
	}
	return actions, result.Err()
}

// Close releases the driver.
func (n *Neo4jClient) Close() error {
	return n.driver.Close()
}
