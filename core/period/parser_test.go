package period

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedParser() *Parser {
	return &Parser{Now: func() time.Time { return time.Date(2026, 10, 18, 15, 4, 5, 0, time.Local) }}
}

func d(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

func TestParsePeriodForms(t *testing.T) {
	p := fixedParser()
	cases := []struct {
		in         string
		start, end time.Time
	}{
		{"2022", d(2022, 1, 1), d(2022, 12, 31)},
		{" 2022 ", d(2022, 1, 1), d(2022, 12, 31)},
		{"3/2021-7/2021", d(2021, 3, 1), d(2021, 7, 31)},
		{"03/2021 - 07/2021", d(2021, 3, 1), d(2021, 7, 31)},
		{"15/6/2020-Σήμερα", d(2020, 6, 15), d(2026, 10, 18)},
		{"15/6/2020 – ΣΗΜΕΡΑ", d(2020, 6, 15), d(2026, 10, 18)},
		{"1/1/2019—simera", d(2019, 1, 1), d(2026, 10, 18)},
		{"2020-2021", d(2020, 1, 1), d(2021, 12, 31)},
		{"1/2024-2/2024", d(2024, 1, 1), d(2024, 2, 29)},
		{"1/2023-2/2023", d(2023, 1, 1), d(2023, 2, 28)},
		{"12/2023-12/2023", d(2023, 12, 1), d(2023, 12, 31)},
		{"05/03/2021-20/11/2021", d(2021, 3, 5), d(2021, 11, 20)},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := p.ParsePeriod(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.start, got.Start)
			assert.Equal(t, c.end, got.End)
		})
	}
}

func TestParseDateRoles(t *testing.T) {
	p := fixedParser()

	got, err := p.ParseDate("2021", true)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 1, 1), got)

	got, err = p.ParseDate("2/2021", false)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 2, 28), got)

	got, err = p.ParseDate("9/2/2021", false)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 2, 9), got)

	got, err = p.ParseDate("σήμερα", false)
	require.NoError(t, err)
	assert.Equal(t, d(2026, 10, 18), got)
}

func TestTodayIsRejectedAsStartDate(t *testing.T) {
	p := fixedParser()
	_, err := p.ParseDate("Σήμερα", true)
	var dfe *DateFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, "Σήμερα", dfe.Text)

	_, err = p.ParsePeriod("Σήμερα-2030")
	var pfe *PeriodFormatError
	require.ErrorAs(t, err, &pfe)
	assert.True(t, errors.As(err, &dfe))
}

func TestParsePeriodErrors(t *testing.T) {
	p := fixedParser()
	for _, in := range []string{"not a date", "", "2020-2021-2022", "13/2020-1/2021", "31/2/2021-2022", "2022-2020", "22", "1/1/20-2021"} {
		t.Run(in, func(t *testing.T) {
			_, err := p.ParsePeriod(in)
			var pfe *PeriodFormatError
			require.ErrorAs(t, err, &pfe)
			assert.Equal(t, in, pfe.Text)
		})
	}
}

func TestParseDateUnsupported(t *testing.T) {
	_, err := ParseDate("June 2020", true)
	var dfe *DateFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Contains(t, err.Error(), "June 2020")
}
