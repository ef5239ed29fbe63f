package storage

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/taghive/taghive/pkg/ident"
	"github.com/taghive/taghive/pkg/model"
)

// Id prefixes per collection.
const (
	accountPrefix   = "acc"
	containerPrefix = "ctr"
	eventPrefix     = "evt"
)

// MemoryStore implements model.Store with in-process maps guarded by a single
// mutex. Each operation runs to completion under the lock, so upserts are
// atomic per call and the id generator's existence check always observes
// completed writes: two concurrent upserts can never mint the same id.
//
// Events are append-only and live for the process lifetime; there is no
// eviction. Accounts are never deleted, so the container->account reference
// check cannot race a removal.
type MemoryStore struct {
	mu sync.RWMutex

	accounts     map[string]*model.Account
	accountOrder []string

	containers     map[string]*model.Container
	containerOrder []string

	events   []*model.Event
	eventIDs map[string]struct{}

	idgen *ident.Generator
	now   func() time.Time
}

// Option customizes a MemoryStore.
type Option func(*MemoryStore)

// WithClock injects the time source used for created_at/updated_at stamps
// and ingest-receipt timestamps. Tests pin this to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator injects the identifier generator. Tests pass one with a
// fixed random source to assert exact generated ids.
func WithIDGenerator(g *ident.Generator) Option {
	return func(s *MemoryStore) { s.idgen = g }
}

// NewMemoryStore creates an empty store. Construct one per process (or per
// test) and pass it by reference; there is no package-level instance.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		accounts:   make(map[string]*model.Account),
		containers: make(map[string]*model.Container),
		eventIDs:   make(map[string]struct{}),
		idgen:      ident.NewGenerator(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertAccount creates the account on first write and merges on subsequent
// writes: name always overwrites, meta overwrites only when supplied,
// created_at is preserved and updated_at refreshed. Validation failures
// leave the store untouched.
func (s *MemoryStore) UpsertAccount(in model.AccountUpsert) (*model.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.Validationf("account name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(in.AccountID)
	if id == "" {
		generated, err := s.idgen.Generate(accountPrefix, name, func(candidate string) bool {
			_, taken := s.accounts[candidate]
			return taken
		})
		if err != nil {
			return nil, err
		}
		id = generated
	}

	now := s.now()
	existing, ok := s.accounts[id]
	if !ok {
		acct := &model.Account{
			AccountID: id,
			Name:      name,
			Meta:      cloneMap(in.Meta),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if acct.Meta == nil {
			acct.Meta = map[string]any{}
		}
		s.accounts[id] = acct
		s.accountOrder = append(s.accountOrder, id)
		return cloneAccount(acct), nil
	}

	merged := *existing
	merged.Name = name
	if in.Meta != nil {
		merged.Meta = cloneMap(in.Meta)
	}
	merged.UpdatedAt = now
	s.accounts[id] = &merged
	return cloneAccount(&merged), nil
}

// GetAccount returns the account or a wrapped model.ErrNotFound. An empty id
// is a validation failure, distinguishable from a miss.
func (s *MemoryStore) GetAccount(id string) (*model.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.Validationf("account id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, model.ErrNotFound)
	}
	return cloneAccount(acct), nil
}

// ListAccounts returns all accounts in insertion order.
func (s *MemoryStore) ListAccounts() ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Account, 0, len(s.accountOrder))
	for _, id := range s.accountOrder {
		out = append(out, cloneAccount(s.accounts[id]))
	}
	return out, nil
}

// UpsertContainer validates the whole payload before any write: the name
// must be non-empty, the referenced account must already exist (it is never
// auto-created), the type must normalize to web or server, and the version
// is coerced to a positive integer. On update, fields absent from the
// payload keep their stored values; version is caller-supplied and is not
// required to increase.
func (s *MemoryStore) UpsertContainer(in model.ContainerUpsert) (*model.Container, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.Validationf("container name is required")
	}
	accountID := strings.TrimSpace(in.AccountID)
	if accountID == "" {
		return nil, model.Validationf("account_id is required")
	}
	ctype := model.ContainerType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !ctype.Valid() {
		return nil, model.Validationf("container type must be %q or %q", model.ContainerTypeWeb, model.ContainerTypeServer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, model.Validationf("unknown account %q", accountID)
	}

	id := strings.TrimSpace(in.ContainerID)
	if id == "" {
		generated, err := s.idgen.Generate(containerPrefix, name, func(candidate string) bool {
			_, taken := s.containers[candidate]
			return taken
		})
		if err != nil {
			return nil, err
		}
		id = generated
	}

	now := s.now()
	existing, ok := s.containers[id]
	if !ok {
		ctr := &model.Container{
			ContainerID: id,
			AccountID:   accountID,
			Type:        ctype,
			Name:        name,
			Version:     coerceVersion(in.Version, 1),
			Variables:   cloneRecords(in.Variables),
			Triggers:    cloneRecords(in.Triggers),
			Tags:        cloneRecords(in.Tags),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.containers[id] = ctr
		s.containerOrder = append(s.containerOrder, id)
		return cloneContainer(ctr), nil
	}

	merged := *existing
	merged.AccountID = accountID
	merged.Type = ctype
	merged.Name = name
	merged.Version = coerceVersion(in.Version, existing.Version)
	if in.Variables != nil {
		merged.Variables = cloneRecords(in.Variables)
	}
	if in.Triggers != nil {
		merged.Triggers = cloneRecords(in.Triggers)
	}
	if in.Tags != nil {
		merged.Tags = cloneRecords(in.Tags)
	}
	merged.UpdatedAt = now
	s.containers[id] = &merged
	return cloneContainer(&merged), nil
}

// GetContainer returns the container or a wrapped model.ErrNotFound.
func (s *MemoryStore) GetContainer(id string) (*model.Container, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.Validationf("container id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctr, ok := s.containers[id]
	if !ok {
		return nil, fmt.Errorf("container %q: %w", id, model.ErrNotFound)
	}
	return cloneContainer(ctr), nil
}

// ListContainers returns containers in insertion order. A non-empty
// accountID restricts the result to containers owned by that account; the
// relative order of the survivors is unchanged.
func (s *MemoryStore) ListContainers(accountID string) ([]*model.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Container, 0, len(s.containerOrder))
	for _, id := range s.containerOrder {
		ctr := s.containers[id]
		if accountID != "" && ctr.AccountID != accountID {
			continue
		}
		out = append(out, cloneContainer(ctr))
	}
	return out, nil
}

// AppendEvent records an immutable event. The event name is required; the
// timestamp defaults to the receipt time when absent and is otherwise stored
// verbatim, even when unparsable.
func (s *MemoryStore) AppendEvent(in model.EventInput) (*model.Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.Validationf("event name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.idgen.Generate(eventPrefix, name, func(candidate string) bool {
		_, taken := s.eventIDs[candidate]
		return taken
	})
	if err != nil {
		return nil, err
	}

	ts := in.TS
	if strings.TrimSpace(ts) == "" {
		ts = s.now().UTC().Format(time.RFC3339Nano)
	}

	ev := &model.Event{
		ID:      id,
		Name:    name,
		TS:      ts,
		User:    cloneMap(in.User),
		Context: cloneMap(in.Context),
		Biz:     cloneMap(in.Biz),
	}
	s.events = append(s.events, ev)
	s.eventIDs[id] = struct{}{}
	return ev, nil
}

// ListEvents returns a snapshot of the event log in ingest order. The
// returned slice is a copy; the events themselves are immutable and shared.
func (s *MemoryStore) ListEvents() ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Stats reports collection sizes for metrics gauges and readiness checks.
func (s *MemoryStore) Stats() (accounts, containers, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), len(s.containers), len(s.events)
}

// coerceVersion turns an untyped JSON version value into a positive integer.
// Absent or non-numeric values fall back to def; anything below 1 becomes 1.
func coerceVersion(v any, def int) int {
	out := def
	switch n := v.(type) {
	case nil:
		// keep default
	case float64: // encoding/json numbers
		out = int(n)
	case int:
		out = n
	case int64:
		out = int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			out = parsed
		}
	}
	if out < 1 {
		out = 1
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRecords(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, cloneMap(r))
	}
	return out
}

func cloneAccount(a *model.Account) *model.Account {
	out := *a
	out.Meta = cloneMap(a.Meta)
	return &out
}

func cloneContainer(c *model.Container) *model.Container {
	out := *c
	out.Variables = cloneRecords(c.Variables)
	out.Triggers = cloneRecords(c.Triggers)
	out.Tags = cloneRecords(c.Tags)
	return &out
}
