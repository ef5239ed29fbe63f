package model

import "time"

// ContainerType identifies where a container's tags execute.
type ContainerType string

const (
	ContainerTypeWeb    ContainerType = "web"
	ContainerTypeServer ContainerType = "server"
)

// Valid reports whether the container type is one of the supported values.
func (t ContainerType) Valid() bool {
	return t == ContainerTypeWeb || t == ContainerTypeServer
}

// Account is a top-level tenant grouping containers.
type Account struct {
	AccountID string         `json:"account_id"`
	Name      string         `json:"name"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Container is a named tag-configuration bundle belonging to one account.
// Variables, triggers and tags are opaque to the store: clients manage their
// shape, the server only carries them.
type Container struct {
	ContainerID string           `json:"container_id"`
	AccountID   string           `json:"account_id"`
	Type        ContainerType    `json:"type"`
	Name        string           `json:"name"`
	Version     int              `json:"version"`
	Variables   []map[string]any `json:"variables"`
	Triggers    []map[string]any `json:"triggers"`
	Tags        []map[string]any `json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Event is an immutable ingested occurrence. TS is kept verbatim as supplied
// by the client (or the server receipt time when absent); it is parsed lazily
// at aggregation time so a malformed timestamp never rejects an ingest.
type Event struct {
	ID      string         `json:"id"`
	Name    string         `json:"event"`
	TS      string         `json:"ts"`
	User    map[string]any `json:"user,omitempty"`
	Context map[string]any `json:"context,omitempty"`
	Biz     map[string]any `json:"biz,omitempty"`
}

// AccountUpsert is the write payload for accounts. A nil Meta means the field
// was absent and the stored value is preserved on update.
type AccountUpsert struct {
	AccountID string         `json:"account_id"`
	Name      string         `json:"name"`
	Meta      map[string]any `json:"meta"`
}

// ContainerUpsert is the write payload for containers. Version is untyped on
// purpose: clients send it as a JSON number or a string and the store coerces
// it. Nil slices mean "field absent, preserve stored value".
type ContainerUpsert struct {
	ContainerID string           `json:"container_id"`
	AccountID   string           `json:"account_id"`
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Version     any              `json:"version"`
	Variables   []map[string]any `json:"variables"`
	Triggers    []map[string]any `json:"triggers"`
	Tags        []map[string]any `json:"tags"`
}

// EventInput is the ingest payload.
type EventInput struct {
	Name    string         `json:"event"`
	TS      string         `json:"ts"`
	User    map[string]any `json:"user"`
	Context map[string]any `json:"context"`
	Biz     map[string]any `json:"biz"`
}

// Store defines the methods required for persisting and retrieving taghive
// entities. Implementations own the three collections exclusively; callers
// never mutate returned records in place.
type Store interface {
	// Account operations
	UpsertAccount(in AccountUpsert) (*Account, error)
	GetAccount(id string) (*Account, error)
	ListAccounts() ([]*Account, error)

	// Container operations
	UpsertContainer(in ContainerUpsert) (*Container, error)
	GetContainer(id string) (*Container, error)
	ListContainers(accountID string) ([]*Container, error)

	// Event operations (append-only)
	AppendEvent(in EventInput) (*Event, error)
	ListEvents() ([]*Event, error)
}
