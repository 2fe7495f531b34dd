package domain

// ConnID identifies one live connection for its lifetime. Ids are never
// reused.
type ConnID string

const DefaultDisplayName = "Anonymous"
