// Package dashboard computes the aggregate views served to the UI from the
// persisted notice table. Nothing here writes the table.
package dashboard

import (
	"fmt"
	"slices"
	"sort"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/scrape/util"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
)

const (
	colWorkers = "Workers"
	colRow     = "Row"
	colPop     = "Population"
)

type StateStat struct {
	State        string  `json:"state"`
	TotalWorkers float64 `json:"total_workers"`
	Population   int64   `json:"population"`
	RatePer100k  float64 `json:"rate_per_100k"`
}

type TimelinePoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Workers float64 `json:"workers"`
}

type LookupResult struct {
	State        string          `json:"state"`
	Industry     string          `json:"industry"`
	TotalWorkers float64         `json:"total_workers"`
	Companies    int             `json:"companies"`
	Columns      []string        `json:"columns"`
	Rows         []domain.Record `json:"rows"`
}

type Options struct {
	States     []string `json:"states"`
	Industries []string `json:"industries"`
}

func requireColumns(t domain.Table, cols ...string) error {
	if missing := t.Missing(cols...); len(missing) > 0 {
		return &errs.MissingColumnsError{Columns: missing}
	}
	return nil
}

// workers coerces the worker count column. Unreadable cells count as 0.
func workers(t domain.Table) []float64 {
	out := make([]float64, t.Len())
	for i := range t.Rows {
		out[i], _ = util.ParseWorkers(t.Value(i, domain.ColWorkers))
	}
	return out
}

// sumBy groups workers by key and returns the sums ordered by key.
func sumBy(keyName string, keys []string, vals []float64) (dataframe.DataFrame, string, error) {
	df := dataframe.New(
		series.New(keys, series.String, keyName),
		series.New(vals, series.Float, colWorkers),
	)
	grouped := df.GroupBy(keyName).
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_SUM}, []string{colWorkers})
	if grouped.Err != nil {
		return grouped, "", fmt.Errorf("group by %s: %w", keyName, grouped.Err)
	}

	sumCol := ""
	for _, name := range grouped.Names() {
		if name != keyName {
			sumCol = name
		}
	}
	sorted := grouped.Arrange(dataframe.Sort(keyName))
	if sorted.Err != nil {
		return sorted, "", fmt.Errorf("sort by %s: %w", keyName, sorted.Err)
	}
	return sorted, sumCol, nil
}

// ByState sums workers per state and joins the totals with StatePopulation
// to give layoffs per 100,000 residents. States without a population entry
// are left out, as are rows with an empty state.
func ByState(t domain.Table) ([]StateStat, error) {
	if err := requireColumns(t, domain.ColState, domain.ColWorkers); err != nil {
		return nil, err
	}

	var (
		states []string
		vals   []float64
	)
	w := workers(t)
	for i := range t.Rows {
		s := t.Value(i, domain.ColState)
		if s == "" {
			continue
		}
		states = append(states, s)
		vals = append(vals, w[i])
	}
	out := []StateStat{}
	if len(states) == 0 {
		return out, nil
	}

	sums, sumCol, err := sumBy(domain.ColState, states, vals)
	if err != nil {
		return nil, err
	}

	joined := sums.InnerJoin(populationFrame(), domain.ColState)
	if joined.Err != nil {
		return nil, fmt.Errorf("join population: %w", joined.Err)
	}
	if joined.Nrow() == 0 {
		return out, nil
	}
	joined = joined.Arrange(dataframe.Sort(domain.ColState))

	names := joined.Col(domain.ColState).Records()
	totals := joined.Col(sumCol).Float()
	pops := joined.Col(colPop).Float()
	for i, name := range names {
		st := StateStat{
			State:        name,
			TotalWorkers: totals[i],
			Population:   int64(pops[i]),
		}
		if st.Population > 0 {
			st.RatePer100k = st.TotalWorkers / float64(st.Population) * 100000
		}
		out = append(out, st)
	}
	return out, nil
}

func populationFrame() dataframe.DataFrame {
	names := make([]string, 0, len(StatePopulation))
	for name := range StatePopulation {
		names = append(names, name)
	}
	sort.Strings(names)

	pops := make([]int, len(names))
	for i, name := range names {
		pops[i] = int(StatePopulation[name])
	}
	return dataframe.New(
		series.New(names, series.String, domain.ColState),
		series.New(pops, series.Int, colPop),
	)
}

// Timeline sums workers per received date. Rows whose date cannot be
// parsed are dropped.
func Timeline(t domain.Table) ([]TimelinePoint, error) {
	if err := requireColumns(t, domain.ColReceivedDate, domain.ColWorkers); err != nil {
		return nil, err
	}

	var (
		dates []string
		vals  []float64
	)
	w := workers(t)
	for i := range t.Rows {
		d, ok := util.ParseNoticeDate(t.Value(i, domain.ColReceivedDate))
		if !ok {
			continue
		}
		dates = append(dates, d.Format("2006-01-02"))
		vals = append(vals, w[i])
	}
	out := []TimelinePoint{}
	if len(dates) == 0 {
		return out, nil
	}

	const key = "Date"
	sums, sumCol, err := sumBy(key, dates, vals)
	if err != nil {
		return nil, err
	}
	keys := sums.Col(key).Records()
	totals := sums.Col(sumCol).Float()
	for i, d := range keys {
		out = append(out, TimelinePoint{Date: d, Workers: totals[i]})
	}
	return out, nil
}

// Lookup filters notices to one state and industry and totals the workers
// and distinct companies affected. Matching is exact on the stored text.
func Lookup(t domain.Table, state, industry string) (LookupResult, error) {
	if err := requireColumns(t, domain.ColState, domain.ColIndustry, domain.ColWorkers, domain.ColCompany); err != nil {
		return LookupResult{}, err
	}

	res := LookupResult{
		State:    state,
		Industry: industry,
		Columns:  slices.Clone(t.Columns),
		Rows:     []domain.Record{},
	}
	if t.Len() == 0 {
		return res, nil
	}

	idx := make([]int, t.Len())
	stateCol := make([]string, t.Len())
	industryCol := make([]string, t.Len())
	for i := range t.Rows {
		idx[i] = i
		stateCol[i] = t.Value(i, domain.ColState)
		industryCol[i] = t.Value(i, domain.ColIndustry)
	}

	df := dataframe.New(
		series.New(idx, series.Int, colRow),
		series.New(stateCol, series.String, domain.ColState),
		series.New(industryCol, series.String, domain.ColIndustry),
	)
	matched := df.
		Filter(dataframe.F{Colname: domain.ColState, Comparator: series.Eq, Comparando: state}).
		Filter(dataframe.F{Colname: domain.ColIndustry, Comparator: series.Eq, Comparando: industry})
	if matched.Err != nil {
		return LookupResult{}, fmt.Errorf("filter notices: %w", matched.Err)
	}
	if matched.Nrow() == 0 {
		return res, nil
	}

	rows, err := matched.Col(colRow).Int()
	if err != nil {
		return LookupResult{}, fmt.Errorf("filter notices: %w", err)
	}

	w := workers(t)
	sums := make([]float64, 0, len(rows))
	companies := map[string]struct{}{}
	for _, i := range rows {
		sums = append(sums, w[i])
		if c := t.Value(i, domain.ColCompany); c != "" {
			companies[c] = struct{}{}
		}
		res.Rows = append(res.Rows, t.Rows[i])
	}
	res.TotalWorkers = floats.Sum(sums)
	res.Companies = len(companies)
	return res, nil
}

// LookupOptions lists the distinct states and non-empty industries in
// first-seen order.
func LookupOptions(t domain.Table) (Options, error) {
	if err := requireColumns(t, domain.ColState, domain.ColIndustry); err != nil {
		return Options{}, err
	}

	opts := Options{States: []string{}, Industries: []string{}}
	seenState := map[string]bool{}
	seenIndustry := map[string]bool{}
	for i := range t.Rows {
		if s := t.Value(i, domain.ColState); !seenState[s] {
			seenState[s] = true
			opts.States = append(opts.States, s)
		}
		if ind := t.Value(i, domain.ColIndustry); ind != "" && !seenIndustry[ind] {
			seenIndustry[ind] = true
			opts.Industries = append(opts.Industries, ind)
		}
	}
	return opts, nil
}

// Summary is a headline view of the whole table.
type Summary struct {
	Notices      int     `json:"notices"`
	TotalWorkers float64 `json:"total_workers"`
	States       int     `json:"states"`
	Latest       string  `json:"latest_received,omitempty"`
}

func Summarize(t domain.Table) Summary {
	s := Summary{Notices: t.Len(), TotalWorkers: floats.Sum(workers(t))}

	states := map[string]struct{}{}
	for i := range t.Rows {
		if st := t.Value(i, domain.ColState); st != "" {
			states[st] = struct{}{}
		}
		if d, ok := util.ParseNoticeDate(t.Value(i, domain.ColReceivedDate)); ok {
			if ds := d.Format("2006-01-02"); ds > s.Latest {
				s.Latest = ds
			}
		}
	}
	s.States = len(states)
	return s
}

// Notices is a filtered view of the table for the notices listing.
type Notices struct {
	Columns []string        `json:"columns"`
	Rows    []domain.Record `json:"rows"`
	Total   int             `json:"total"`
}

// FilterNotices keeps rows whose state and industry equal the given values.
// An empty filter matches everything; a filter on a column the table does
// not have matches nothing.
func FilterNotices(t domain.Table, state, industry string) Notices {
	out := Notices{Columns: slices.Clone(t.Columns), Rows: []domain.Record{}}
	for i, row := range t.Rows {
		if state != "" && t.Value(i, domain.ColState) != state {
			continue
		}
		if industry != "" && t.Value(i, domain.ColIndustry) != industry {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	out.Total = len(out.Rows)
	return out
}
