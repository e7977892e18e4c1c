package month_test

import (
	"testing"
	"time"

	"fiscus/internal/month"
	"fiscus/internal/testutil"
)

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := month.Parse("2025-03")
		testutil.AssertNoError(t, err)
		if m.Year != 2025 || m.Month != time.March {
			t.Errorf("expected 2025-03, got %v", m)
		}
	})

	t.Run("invalid_tokens", func(t *testing.T) {
		for _, token := range []string{"", "2025", "2025-13", "2025-00", "2025-3", "03-2025", "2025/03", "2025-03-01"} {
			_, err := month.Parse(token)
			testutil.AssertAppError(t, err, "INVALID_MONTH_FORMAT")
		}
	})
}

func TestIsValid(t *testing.T) {
	if !month.IsValid("2024-12") {
		t.Error("expected 2024-12 to be valid")
	}
	if month.IsValid("2024-1") {
		t.Error("expected 2024-1 to be invalid")
	}
}

func TestString(t *testing.T) {
	m, err := month.Parse("2025-07")
	testutil.AssertNoError(t, err)
	if got := m.String(); got != "2025-07" {
		t.Errorf("expected 2025-07, got %s", got)
	}
}

func TestDays(t *testing.T) {
	cases := []struct {
		token string
		want  int
	}{
		{"2025-01", 31},
		{"2025-02", 28},
		{"2024-02", 29}, // leap year
		{"2000-02", 29}, // century divisible by 400
		{"1900-02", 28}, // century not divisible by 400
		{"2025-04", 30},
		{"2025-12", 31},
	}
	for _, c := range cases {
		m, err := month.Parse(c.token)
		testutil.AssertNoError(t, err)
		if got := m.Days(); got != c.want {
			t.Errorf("%s: expected %d days, got %d", c.token, c.want, got)
		}
	}
}

func TestAfter(t *testing.T) {
	a, _ := month.Parse("2025-03")
	b, _ := month.Parse("2025-04")
	c, _ := month.Parse("2024-12")

	if !b.After(a) {
		t.Error("expected 2025-04 to be after 2025-03")
	}
	if a.After(b) {
		t.Error("expected 2025-03 not to be after 2025-04")
	}
	if a.After(a) {
		t.Error("expected a month not to be after itself")
	}
	if c.After(a) {
		t.Error("expected 2024-12 not to be after 2025-03")
	}
}

func TestPrevious(t *testing.T) {
	t.Run("mid_year", func(t *testing.T) {
		m, _ := month.Parse("2025-03")
		if got := m.Previous().String(); got != "2025-02" {
			t.Errorf("expected 2025-02, got %s", got)
		}
	})

	t.Run("january_wraps_year", func(t *testing.T) {
		m, _ := month.Parse("2025-01")
		if got := m.Previous().String(); got != "2024-12" {
			t.Errorf("expected 2024-12, got %s", got)
		}
	})
}

func TestFromTime(t *testing.T) {
	m := month.FromTime(time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC))
	if got := m.String(); got != "2025-08" {
		t.Errorf("expected 2025-08, got %s", got)
	}
}
