package market

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeries(t *testing.T) {
	t.Parallel()

	dates := []time.Time{day(2015, 1, 2), day(2015, 1, 3), day(2015, 1, 4)}
	rows := [][]float64{{1.2, 1.5}, {1.3, 1.4}, {1.25, 1.45}}

	ps, err := NewPriceSeries(dates, []string{"EUR", "USD"}, rows)
	require.NoError(t, err)

	assert.Equal(t, 3, ps.Len())
	assert.Equal(t, []string{"EUR", "USD"}, ps.Currencies())
	assert.Equal(t, 1.4, ps.Spot(1, 1))

	i, err := ps.Index(day(2015, 1, 3).Add(15 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = ps.Index(day(2015, 1, 5))
	assert.ErrorIs(t, err, ErrDateNotFound)
}

func TestNewPriceSeries_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dates      []time.Time
		currencies []string
		rows       [][]float64
		errIs      error
	}{
		{
			name:       "unsorted",
			dates:      []time.Time{day(2015, 1, 3), day(2015, 1, 2)},
			currencies: []string{"EUR"},
			rows:       [][]float64{{1}, {1}},
			errIs:      ErrUnsortedDates,
		},
		{
			name:       "duplicate date",
			dates:      []time.Time{day(2015, 1, 2), day(2015, 1, 2)},
			currencies: []string{"EUR"},
			rows:       [][]float64{{1}, {1}},
			errIs:      ErrUnsortedDates,
		},
		{
			name:       "ragged row",
			dates:      []time.Time{day(2015, 1, 2)},
			currencies: []string{"EUR", "USD"},
			rows:       [][]float64{{1}},
		},
		{
			name:       "zero price",
			dates:      []time.Time{day(2015, 1, 2)},
			currencies: []string{"EUR"},
			rows:       [][]float64{{0}},
		},
		{
			name:       "duplicate currency",
			dates:      []time.Time{day(2015, 1, 2)},
			currencies: []string{"EUR", "EUR"},
			rows:       [][]float64{{1, 1}},
		},
		{
			name:  "no currencies",
			dates: []time.Time{day(2015, 1, 2)},
			rows:  [][]float64{{}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewPriceSeries(tt.dates, tt.currencies, tt.rows)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
		})
	}
}

func TestLogReturns(t *testing.T) {
	t.Parallel()

	dates := []time.Time{day(2015, 1, 2), day(2015, 1, 3), day(2015, 1, 4)}
	rows := [][]float64{{1.0, 2.0}, {1.1, 2.0}, {1.0, 2.2}}
	ps, err := NewPriceSeries(dates, []string{"EUR", "USD"}, rows)
	require.NoError(t, err)

	lr := ps.LogReturns()
	assert.Equal(t, 2, lr.Len())
	assert.InDelta(t, math.Log(1.1), lr.At(1, 0), 1e-12)
	assert.InDelta(t, 0.0, lr.At(1, 1), 1e-12)
	assert.InDelta(t, math.Log(1.0/1.1), lr.At(2, 0), 1e-12)
	assert.Equal(t, day(2015, 1, 4), lr.Date(2))

	// row 0 has no return and is clamped away
	assert.Equal(t, []float64{lr.At(1, 1), lr.At(2, 1)}, lr.Column(1, 0, 2))
	assert.Nil(t, lr.Column(0, 2, 1))
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := `DATE,eur,USD
02/01/2015,1.2775,1.5336

03/01/2015,1.2801,1.5301
`
	ps, err := ReadCSV(strings.NewReader(in), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"EUR", "USD"}, ps.Currencies())
	assert.Equal(t, 2, ps.Len())
	assert.Equal(t, day(2015, 1, 3), ps.Date(1))
	assert.Equal(t, 1.5301, ps.Spot(1, 1))
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	ps, err := NewPriceSeries(
		[]time.Time{day(2015, 1, 2), day(2015, 1, 5)},
		[]string{"EUR", "JPY"},
		[][]float64{{1.2775, 183.74}, {1.2801, 184.1}},
	)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, ps, ""))
	assert.Equal(t, "DATE,EUR,JPY\n02/01/2015,1.2775,183.74\n05/01/2015,1.2801,184.1\n", sb.String())

	back, err := ReadCSV(strings.NewReader(sb.String()), "")
	require.NoError(t, err)
	assert.Equal(t, ps.Dates(), back.Dates())
	assert.Equal(t, 184.1, back.Spot(1, 1))
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"header only date", "DATE\n"},
		{"bad date", "DATE,EUR\n2015-01-02,1.2\n"},
		{"bad price", "DATE,EUR\n02/01/2015,abc\n"},
		{"unsorted", "DATE,EUR\n03/01/2015,1.2\n02/01/2015,1.2\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.in), DateLayout)
			assert.Error(t, err)
		})
	}
}

func TestCalendarDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 363, CalendarDays(day(2015, 1, 2), day(2015, 12, 31)))
	assert.Equal(t, -1, CalendarDays(day(2015, 1, 2), day(2015, 1, 1)))
	assert.Equal(t, 0, CalendarDays(day(2015, 1, 2).Add(23*time.Hour), day(2015, 1, 2)))
}
