package schema

// banRecordsSchema describes the persisted ban mapping: one object keyed by
// player name, each value a full ban record. Optional display overrides are
// explicitly nullable.
const banRecordsSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["bannedUntil", "reason", "bannedBy", "isPermanent", "bannedAt"],
    "properties": {
      "bannedUntil":   {"type": "number"},
      "reason":        {"type": "string", "minLength": 1},
      "bannedBy":      {"type": "string"},
      "isPermanent":   {"type": "boolean"},
      "bannedAt":      {"type": "number"},
      "customTitle":   {"type": ["string", "null"]},
      "customMessage": {"type": ["string", "null"]},
      "appealInfo":    {"type": ["string", "null"]}
    }
  }
}`

// issueBanSchema describes the moderator-facing issue request body.
const issueBanSchema = `{
  "type": "object",
  "required": ["reason", "issued_by"],
  "properties": {
    "days":           {"type": "integer", "minimum": 0, "maximum": 30},
    "hours":          {"type": "integer", "minimum": 0, "maximum": 23},
    "minutes":        {"type": "integer", "minimum": 0, "maximum": 59},
    "permanent":      {"type": "boolean"},
    "reason":         {"type": "string"},
    "custom_title":   {"type": "string"},
    "custom_message": {"type": "string"},
    "appeal_info":    {"type": "string"},
    "issued_by":      {"type": "string", "minLength": 1},
    "announce":       {"type": "boolean"}
  },
  "additionalProperties": false
}`

// NewBanRecordsValidator validates the persisted ban blob format.
func NewBanRecordsValidator() (*Validator, error) {
	return NewValidator([]byte(banRecordsSchema))
}

// NewIssueBanValidator validates issue-ban request bodies.
func NewIssueBanValidator() (*Validator, error) {
	return NewValidator([]byte(issueBanSchema))
}
