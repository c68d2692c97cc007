package config

import (
	"fmt"

	"github.com/google/uuid"
)

// Stamp records a UUID that Validate had to generate.
type Stamp struct {
	// Connection is the display name of the connection that was stamped.
	Connection string
	// Query is the query name, empty when the connection itself was stamped.
	Query string
	UUID  string
}

// Validate fills in defaults for every missing field of the model and
// returns the UUIDs it had to generate so a loader can persist them.
func Validate(m *Model) []Stamp {
	var stamps []Stamp
	for i, conn := range m.Connections {
		if conn.DisplayName == "" {
			conn.DisplayName = fmt.Sprintf("Unnamed Connection #%d", i+1)
		}
		if conn.UUID == "" {
			conn.UUID = uuid.NewString()
			stamps = append(stamps, Stamp{Connection: conn.DisplayName, UUID: conn.UUID})
		}
		if conn.LoginURL == "" {
			conn.LoginURL = DefaultLoginURL
		}
		if conn.APIVersion == "" {
			conn.APIVersion = DefaultAPIVersion
		}
		for j, q := range conn.Queries {
			if q.Name == "" {
				q.Name = fmt.Sprintf("Unnamed Query #%d", j+1)
			}
			if q.UUID == "" {
				q.UUID = uuid.NewString()
				stamps = append(stamps, Stamp{Connection: conn.DisplayName, Query: q.Name, UUID: q.UUID})
			}
		}
	}
	return stamps
}
