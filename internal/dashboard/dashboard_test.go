package dashboard

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noticeTable() domain.Table {
	return domain.Table{
		Columns: []string{"Company", "State", "Industry", "Number of Workers", "WARN Received Date"},
		Rows: []domain.Record{
			{"Acme", "New York", "Retail", "100", "03/01/2024"},
			{"Acme", "New York", "Retail", "1,000", "03/02/2024"},
			{"Bolt", "New York", "Retail", "TBD", "03/02/2024"},
			{"Cogs", "New York", "Manufacturing", "50", "not a date"},
			{"Dyne", "Texas", "Retail", "60", "2024-03-01"},
			{"Ezra", "Atlantis", "", "10", "03/05/2024"},
		},
	}
}

func TestByState(t *testing.T) {
	got, err := ByState(noticeTable())
	require.NoError(t, err)

	want := []StateStat{
		{State: "New York", TotalWorkers: 1150, Population: 19469232, RatePer100k: 1150.0 / 19469232 * 100000},
		{State: "Texas", TotalWorkers: 60, Population: 30976754, RatePer100k: 60.0 / 30976754 * 100000},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ByState() mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeline(t *testing.T) {
	got, err := Timeline(noticeTable())
	require.NoError(t, err)

	want := []TimelinePoint{
		{Date: "2024-03-01", Workers: 160},
		{Date: "2024-03-02", Workers: 1000},
		{Date: "2024-03-05", Workers: 10},
	}
	assert.Equal(t, want, got)
}

func TestLookup(t *testing.T) {
	got, err := Lookup(noticeTable(), "New York", "Retail")
	require.NoError(t, err)
	assert.Equal(t, 1100.0, got.TotalWorkers)
	assert.Equal(t, 2, got.Companies)
	assert.Len(t, got.Rows, 3)

	none, err := Lookup(noticeTable(), "Texas", "Manufacturing")
	require.NoError(t, err)
	assert.Zero(t, none.TotalWorkers)
	assert.Zero(t, none.Companies)
	assert.Empty(t, none.Rows)
}

func TestLookupOptions(t *testing.T) {
	got, err := LookupOptions(noticeTable())
	require.NoError(t, err)
	assert.Equal(t, []string{"New York", "Texas", "Atlantis"}, got.States)
	assert.Equal(t, []string{"Retail", "Manufacturing"}, got.Industries)
}

func TestSummarize(t *testing.T) {
	got := Summarize(noticeTable())
	assert.Equal(t, 6, got.Notices)
	assert.Equal(t, 1220.0, got.TotalWorkers)
	assert.Equal(t, 3, got.States)
	assert.Equal(t, "2024-03-05", got.Latest)
}

func TestFilterNotices(t *testing.T) {
	assert.Equal(t, 6, FilterNotices(noticeTable(), "", "").Total)
	assert.Equal(t, 4, FilterNotices(noticeTable(), "New York", "").Total)
	assert.Equal(t, 4, FilterNotices(noticeTable(), "", "Retail").Total)
}

func TestAnalyticsRequireColumns(t *testing.T) {
	tbl := domain.Table{Columns: []string{"Company", "State"}, Rows: []domain.Record{{"Acme", "NY"}}}

	_, err := ByState(tbl)
	assert.True(t, errors.Is(err, errs.ErrMissingColumns))

	_, err = Timeline(tbl)
	var mc *errs.MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"WARN Received Date", "Number of Workers"}, mc.Columns)

	_, err = Lookup(tbl, "NY", "Retail")
	assert.True(t, errors.Is(err, errs.ErrMissingColumns))

	_, err = LookupOptions(tbl)
	assert.True(t, errors.Is(err, errs.ErrMissingColumns))
}

func TestAnalyticsEmptyTable(t *testing.T) {
	tbl := domain.Table{Columns: noticeTable().Columns}

	states, err := ByState(tbl)
	require.NoError(t, err)
	assert.Empty(t, states)

	points, err := Timeline(tbl)
	require.NoError(t, err)
	assert.Empty(t, points)

	res, err := Lookup(tbl, "Texas", "Retail")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func writeNotices(t *testing.T, tbl domain.Table) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warn_notices.csv")
	require.NoError(t, store.SaveTable(path, tbl, false))
	return path
}

func TestCacheReloadsOnlyWhenFileChanges(t *testing.T) {
	path := writeNotices(t, noticeTable())
	c := NewCache()

	first, err := c.Table(path)
	require.NoError(t, err)
	_, err = c.Table(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.Loads(), "unchanged file must be served from memory")

	grown := noticeTable()
	grown.Rows = append(grown.Rows, domain.Record{"Fizz", "Ohio", "Retail", "9", "03/09/2024"})
	require.NoError(t, store.SaveTable(path, grown, false))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := c.Table(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.Loads())
	assert.Equal(t, first.Len()+1, second.Len())

	c.Invalidate(path)
	_, err = c.Table(path)
	require.NoError(t, err)
	assert.EqualValues(t, 3, c.Loads())
}

func TestCacheConcurrentMissesShareOneLoad(t *testing.T) {
	path := writeNotices(t, noticeTable())

	release := make(chan struct{})
	c := NewCache()
	c.load = func(p string) (domain.Table, error) {
		<-release
		return store.LoadTable(p)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Table(path)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, c.Loads())
}

func TestCacheInvalidateDuringLoad(t *testing.T) {
	path := writeNotices(t, noticeTable())

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := NewCache()
	c.load = func(p string) (domain.Table, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return store.LoadTable(p)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Table(path)
		assert.NoError(t, err)
	}()
	<-entered
	c.Invalidate(path)

	// A caller after Invalidate must not join the stale load.
	_, err := c.Table(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.Loads())

	close(release)
	<-done
	assert.EqualValues(t, 2, c.Loads())

	// The stale result was not stored over the fresh one.
	_, err = c.Table(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.Loads())

	c.Invalidate(path)
	_, err = c.Table(path)
	require.NoError(t, err)
	assert.EqualValues(t, 3, c.Loads())
}

func TestCacheMissingFile(t *testing.T) {
	_, err := NewCache().Table(filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, errors.Is(err, errs.ErrStorage))
}

func TestService(t *testing.T) {
	svc := NewService(writeNotices(t, noticeTable()), nil)

	opts, err := svc.Options()
	require.NoError(t, err)
	assert.Contains(t, opts.States, "Texas")

	res, err := svc.Lookup("Texas", "Retail")
	require.NoError(t, err)
	assert.Equal(t, 60.0, res.TotalWorkers)

	notices, err := svc.Notices("Texas", "")
	require.NoError(t, err)
	assert.Equal(t, 1, notices.Total)

	_, err = svc.ByState()
	require.NoError(t, err)
	_, err = svc.Timeline()
	require.NoError(t, err)
	assert.EqualValues(t, 1, svc.Cache.Loads())
}
