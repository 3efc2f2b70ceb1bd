package models

// Agent is a row in the agents reference table. Rows are created lazily the
// first time an unknown extension shows up in a batch and are never updated
// by the importer afterwards.
type Agent struct {
	ID        int64   `db:"agent_id"      json:"agent_id"`
	Name      string  `db:"agent_name"    json:"agent_name"`
	Email     *string `db:"email_address" json:"email_address,omitempty"`
	Extension string  `db:"extension"     json:"extension"`
}

// AgentDetails is the resolver input: the parsed roster triple for a known
// extension, or a synthesized placeholder for an un-rostered one.
type AgentDetails struct {
	Name      string
	Email     *string
	Extension string
}
