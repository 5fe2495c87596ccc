package models

// ChangeKind describes what happened to a slice of application state.
type ChangeKind string

const (
	ChangeFetched ChangeKind = "fetched"
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
	ChangeError   ChangeKind = "error"
	ChangeLogin   ChangeKind = "login"
	ChangeLogout  ChangeKind = "logout"
)

// Slice names.
const (
	SliceAuth       = "auth"
	SliceUsers      = "users"
	SlicePortfolios = "portfolios"
)

// ChangeEvent is delivered to slice subscribers after state has changed.
type ChangeEvent struct {
	Slice string
	Kind  ChangeKind
	ID    string // record id or account email; empty for collection-wide events
}
