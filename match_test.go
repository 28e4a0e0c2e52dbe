package casedoc_test

import (
	"testing"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestQueryTerms(t *testing.T) {
	t.Parallel()

	terms := casedoc.QueryTerms("Rate case, RATE of return: ROE!")

	assert.Equal(t, []string{"rate", "case", "return", "roe"}, terms)
}

func TestMatchesQuery(t *testing.T) {
	t.Parallel()

	c := &casedoc.Case{
		CaseNumber:  "ABC-E-24-01",
		Company:     "Test Utility",
		Description: "general rate case",
	}

	t.Run("matches when all terms occur", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.MatchesQuery(c, "rate case"))
	})

	t.Run("matches case-insensitively across company and description", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.MatchesQuery(c, "TEST UTILITY GENERAL"))
	})

	t.Run("matches when half the terms occur", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.MatchesQuery(c, "rate depreciation"))
	})

	t.Run("does not match when fewer than half the terms occur", func(t *testing.T) {
		t.Parallel()
		assert.False(t, casedoc.MatchesQuery(c, "rate depreciation merger"))
	})

	t.Run("ignores short terms", func(t *testing.T) {
		t.Parallel()
		assert.False(t, casedoc.MatchesQuery(c, "of merger"))
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.MatchesQuery(c, "a of"))
	})
}

func TestInDateRange(t *testing.T) {
	t.Parallel()

	r := casedoc.DateRange{Start: date("2024-01-01"), End: date("2024-12-31")}

	t.Run("inclusive at start", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.InDateRange("2024-01-01", r))
	})

	t.Run("inclusive at end", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.InDateRange("12/31/2024", r))
	})

	t.Run("inside range in long form", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.InDateRange("March 15, 2024", r))
	})

	t.Run("before start", func(t *testing.T) {
		t.Parallel()
		assert.False(t, casedoc.InDateRange("2023-12-31", r))
	})

	t.Run("after end", func(t *testing.T) {
		t.Parallel()
		assert.False(t, casedoc.InDateRange("1/1/2025", r))
	})

	t.Run("missing date never matches", func(t *testing.T) {
		t.Parallel()
		assert.False(t, casedoc.InDateRange("", r))
	})

	t.Run("unparseable date never matches", func(t *testing.T) {
		t.Parallel()
		assert.False(t, casedoc.InDateRange("sometime in spring", r))
	})

	t.Run("open-ended range", func(t *testing.T) {
		t.Parallel()
		assert.True(t, casedoc.InDateRange("1999-06-01", casedoc.DateRange{End: date("2024-12-31")}))
	})
}

func TestRunRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a valid request", func(t *testing.T) {
		t.Parallel()
		req := &casedoc.RunRequest{
			Query:     "rate case",
			Utilities: []casedoc.UtilityType{casedoc.UtilityElectric},
			Range:     casedoc.DateRange{Start: date("2024-01-01"), End: date("2024-12-31")},
			Workers:   3,
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		t.Parallel()
		req := &casedoc.RunRequest{
			Query: "rate case",
			Range: casedoc.DateRange{Start: date("2024-12-31"), End: date("2024-01-01")},
		}
		err := req.Validate()
		assert.Equal(t, casedoc.EINVALID, casedoc.ErrorCode(err))
	})

	t.Run("rejects unknown utility", func(t *testing.T) {
		t.Parallel()
		req := &casedoc.RunRequest{Query: "rate", Utilities: []casedoc.UtilityType{"water"}}
		assert.Equal(t, casedoc.EINVALID, casedoc.ErrorCode(req.Validate()))
	})

	t.Run("rejects a query without terms", func(t *testing.T) {
		t.Parallel()
		for _, q := range []string{"", "a of", "--"} {
			req := &casedoc.RunRequest{Query: q}
			assert.Equal(t, casedoc.EINVALID, casedoc.ErrorCode(req.Validate()), "query %q", q)
		}
	})
}
