package storage

import (
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taghive/taghive/pkg/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestUpsertAccountCreate(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(fixedClock(t0)))

	acct, err := s.UpsertAccount(model.AccountUpsert{Name: "Café Ação!", Meta: map[string]any{"plan": "free"}})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^acc_cafe-acao_[a-z0-9]{4}$`), acct.AccountID)
	assert.Equal(t, "Café Ação!", acct.Name)
	assert.Equal(t, map[string]any{"plan": "free"}, acct.Meta)
	assert.Equal(t, t0, acct.CreatedAt)
	assert.Equal(t, t0, acct.UpdatedAt)
}

func TestUpsertAccountMerge(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	now := t0
	s := NewMemoryStore(WithClock(func() time.Time { return now }))

	created, err := s.UpsertAccount(model.AccountUpsert{AccountID: "acc_one", Name: "One", Meta: map[string]any{"plan": "free"}})
	require.NoError(t, err)

	now = t1
	updated, err := s.UpsertAccount(model.AccountUpsert{AccountID: "acc_one", Name: "One Renamed"})
	require.NoError(t, err)

	assert.Equal(t, "One Renamed", updated.Name)
	// meta absent from the second payload: stored value preserved
	assert.Equal(t, map[string]any{"plan": "free"}, updated.Meta)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, t1, updated.UpdatedAt)

	// supplied meta replaces wholesale
	replaced, err := s.UpsertAccount(model.AccountUpsert{AccountID: "acc_one", Name: "One Renamed", Meta: map[string]any{"tier": "pro"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tier": "pro"}, replaced.Meta)
}

func TestUpsertAccountIdempotentConvergence(t *testing.T) {
	s := NewMemoryStore()
	payload := model.AccountUpsert{AccountID: "acc_same", Name: "Same", Meta: map[string]any{"k": "v"}}

	for i := 0; i < 3; i++ {
		_, err := s.UpsertAccount(payload)
		require.NoError(t, err)
	}

	got, err := s.GetAccount("acc_same")
	require.NoError(t, err)
	assert.Equal(t, "Same", got.Name)
	assert.Equal(t, map[string]any{"k": "v"}, got.Meta)
}

func TestUpsertAccountRequiresName(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpsertAccount(model.AccountUpsert{Name: "   "})

	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	// failed upsert leaves no partial write behind
	accounts, err := s.ListAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestGetAccountNotFoundVsMalformed(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetAccount("acc_missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.GetAccount("")
	assert.True(t, model.IsValidation(err))
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func seedAccount(t *testing.T, s *MemoryStore, id string) {
	t.Helper()
	_, err := s.UpsertAccount(model.AccountUpsert{AccountID: id, Name: id})
	require.NoError(t, err)
}

func TestUpsertContainerValidation(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_x")

	tests := []struct {
		name string
		in   model.ContainerUpsert
	}{
		{"missing name", model.ContainerUpsert{AccountID: "acc_x", Type: "web"}},
		{"missing account", model.ContainerUpsert{Name: "c", Type: "web"}},
		{"unknown account", model.ContainerUpsert{Name: "c", AccountID: "acc_nope", Type: "web"}},
		{"bad type", model.ContainerUpsert{Name: "c", AccountID: "acc_x", Type: "mobile"}},
		{"empty type", model.ContainerUpsert{Name: "c", AccountID: "acc_x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpsertContainer(tt.in)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "expected a validation error, got %v", err)
		})
	}

	containers, err := s.ListContainers("")
	require.NoError(t, err)
	assert.Empty(t, containers)
}

func TestUpsertContainerTypeNormalized(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_x")

	ctr, err := s.UpsertContainer(model.ContainerUpsert{Name: "c", AccountID: "acc_x", Type: " WEB "})

	require.NoError(t, err)
	assert.Equal(t, model.ContainerTypeWeb, ctr.Type)
}

func TestUpsertContainerVersionCoercion(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_x")

	tests := []struct {
		name    string
		version any
		want    int
	}{
		{"absent defaults to 1", nil, 1},
		{"json number", float64(7), 7},
		{"numeric string", "12", 12},
		{"non-numeric string", "latest", 1},
		{"zero clamps to 1", float64(0), 1},
		{"negative clamps to 1", float64(-3), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctr, err := s.UpsertContainer(model.ContainerUpsert{
				Name: "c-" + tt.name, AccountID: "acc_x", Type: "web", Version: tt.version,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ctr.Version)
		})
	}
}

func TestUpsertContainerMergePreservesAbsentFields(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_x")

	created, err := s.UpsertContainer(model.ContainerUpsert{
		ContainerID: "ctr_one", Name: "one", AccountID: "acc_x", Type: "web",
		Version:  float64(3),
		Triggers: []map[string]any{{"on": "pageview"}},
	})
	require.NoError(t, err)

	updated, err := s.UpsertContainer(model.ContainerUpsert{
		ContainerID: "ctr_one", Name: "one renamed", AccountID: "acc_x", Type: "server",
	})
	require.NoError(t, err)

	assert.Equal(t, "one renamed", updated.Name)
	assert.Equal(t, model.ContainerTypeServer, updated.Type)
	assert.Equal(t, 3, updated.Version, "absent version preserves the stored value")
	assert.Equal(t, created.Triggers, updated.Triggers)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	// version is caller-supplied: decreasing it is allowed
	downgraded, err := s.UpsertContainer(model.ContainerUpsert{
		ContainerID: "ctr_one", Name: "one renamed", AccountID: "acc_x", Type: "server", Version: float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, downgraded.Version)
}

func TestListContainersFilterPreservesOrder(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_a")
	seedAccount(t, s, "acc_b")

	for i, owner := range []string{"acc_a", "acc_b", "acc_a", "acc_a", "acc_b"} {
		_, err := s.UpsertContainer(model.ContainerUpsert{
			ContainerID: fmt.Sprintf("ctr_%d", i), Name: fmt.Sprintf("c%d", i), AccountID: owner, Type: "web",
		})
		require.NoError(t, err)
	}

	all, err := s.ListContainers("")
	require.NoError(t, err)
	require.Len(t, all, 5)

	filtered, err := s.ListContainers("acc_a")
	require.NoError(t, err)
	require.Len(t, filtered, 3)
	assert.Equal(t, "ctr_0", filtered[0].ContainerID)
	assert.Equal(t, "ctr_2", filtered[1].ContainerID)
	assert.Equal(t, "ctr_3", filtered[2].ContainerID)
}

func TestAppendEvent(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(fixedClock(t0)))

	ev, err := s.AppendEvent(model.EventInput{Name: "pageview", Biz: map[string]any{"sku": "A1"}})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^evt_pageview_[a-z0-9]{4}$`), ev.ID)
	assert.Equal(t, t0.Format(time.RFC3339Nano), ev.TS, "absent ts defaults to receipt time")

	// caller-supplied ts is stored verbatim, even when unparsable
	ev2, err := s.AppendEvent(model.EventInput{Name: "pageview", TS: "not-a-time"})
	require.NoError(t, err)
	assert.Equal(t, "not-a-time", ev2.TS)

	_, err = s.AppendEvent(model.EventInput{Name: "  "})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	events, err := s.ListEvents()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ev.ID, events[0].ID)
}

func TestConcurrentUpsertsNeverCollide(t *testing.T) {
	s := NewMemoryStore()

	const workers = 32
	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			// all workers share the same seed name so generated ids differ
			// only in their random suffix
			acct, err := s.UpsertAccount(model.AccountUpsert{Name: "Shared Name"})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = acct.AccountID
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	accounts, err := s.ListAccounts()
	require.NoError(t, err)
	assert.Len(t, accounts, workers)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_x")

	got, err := s.GetAccount("acc_x")
	require.NoError(t, err)
	got.Name = "mutated"
	got.Meta["rogue"] = true

	again, err := s.GetAccount("acc_x")
	require.NoError(t, err)
	assert.Equal(t, "acc_x", again.Name)
	assert.NotContains(t, again.Meta, "rogue")
}

func TestStats(t *testing.T) {
	s := NewMemoryStore()
	seedAccount(t, s, "acc_x")
	_, err := s.UpsertContainer(model.ContainerUpsert{Name: "c", AccountID: "acc_x", Type: "web"})
	require.NoError(t, err)
	_, err = s.AppendEvent(model.EventInput{Name: "view"})
	require.NoError(t, err)

	accounts, containers, events := s.Stats()
	assert.Equal(t, 1, accounts)
	assert.Equal(t, 1, containers)
	assert.Equal(t, 1, events)
}
