package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescore/internal/core/id"
	core "salescore/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT per (company, key).
type mockQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{vals: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%v:%v", args[0], args[1])
	var increment int64 = 1
	if len(args) == 3 {
		if v, ok := args[2].(int64); ok {
			increment = v
		}
	}
	m.vals[key] += increment
	return &mockRow{val: m.vals[key]}
}

func (m *mockQuerier) value(companyID id.ID, key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[fmt.Sprintf("%v:%v", companyID, key)]
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	company := id.New()
	cfg := core.DefaultConfig("INV")
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, company, cfg, nil, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, company, cfg, nil, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", num)
}

func TestGetNextNumber_CompanyIsolation(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("QT")
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetNextNumber(ctx, id.New(), cfg, nil, now)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(ctx, id.New(), cfg, nil, now)
	require.NoError(t, err)

	// Each company starts its own sequence
	assert.Equal(t, "QT-2026-00001", first)
	assert.Equal(t, "QT-2026-00001", second)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	company := id.New()
	cfg := core.DefaultConfig("SO")
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	opts := &core.Options{
		Strategy:  core.StrategyCached,
		RangeSize: 10,
	}

	// First call reserves 1..10, DB value jumps to 10
	num, err := svc.GetNextNumber(ctx, company, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00001", num)
	assert.EqualValues(t, 10, q.value(company, "SO_2026"))

	// Second call served from memory, DB untouched
	num, err = svc.GetNextNumber(ctx, company, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00002", num)
	assert.EqualValues(t, 10, q.value(company, "SO_2026"))

	// Exhaust the range, next call reserves 11..20
	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, company, cfg, opts, now)
		require.NoError(t, err)
	}
	num, err = svc.GetNextNumber(ctx, company, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00011", num)
	assert.EqualValues(t, 20, q.value(company, "SO_2026"))
}

func TestParseNumber(t *testing.T) {
	assert.EqualValues(t, 42, ParseNumber("INV-2026-00042"))
	assert.EqualValues(t, 7, ParseNumber("QT-00007"))
	assert.EqualValues(t, -1, ParseNumber("garbage"))
}
