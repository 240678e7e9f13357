package util

import (
	"testing"
	"time"
)

// TestValidateAmount_Positive 测试正数金额
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []float64{0.01, 1.0, 100.5, 9999999.99}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err != nil {
			t.Errorf("ValidateAmount(%f) error = %v, want nil", amount, err)
		}
	}
}

// TestValidateAmount_Invalid 测试零、负数和过大金额（异常）
func TestValidateAmount_Invalid(t *testing.T) {
	testCases := []float64{0, -0.01, -100, 10000000, 100000000}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err == nil {
			t.Errorf("ValidateAmount(%f) error = nil, want error", amount)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"500", 50000, true},
		{"500.00", 50000, true},
		{"1,250.50", 125050, true},
		{"$75.5", 7550, true},
		{" 0.01 ", 1, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"20000000", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Errorf("ParseAmount(%q) = %d, %v; want %d", tc.in, got, err, tc.out)
			}
		} else if err == nil {
			t.Errorf("ParseAmount(%q) error = nil, want error", tc.in)
		}
	}
}

// TestValidateDate_Valid 测试有效日期
func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

// TestValidateDate_InvalidFormat 测试无效格式（异常）
func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01", // 月份错误
		"2024-01-32", // 日期错误
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestParseDate_UTCMidnight(t *testing.T) {
	got, err := ParseDate("2024-02-01")
	if err != nil {
		t.Fatalf("ParseDate error = %v", err)
	}
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	empty, err := ParseOptionalDate("  ")
	if err != nil || empty != nil {
		t.Errorf("ParseOptionalDate(blank) = %v, %v; want nil, nil", empty, err)
	}
}

// TestValidateCategory 测试支出分类
func TestValidateCategory(t *testing.T) {
	for _, c := range []string{"utilities", "maintenance", "supplies", "repairs", "insurance", "other"} {
		if err := ValidateCategory(c); err != nil {
			t.Errorf("ValidateCategory(%q) error = %v, want nil", c, err)
		}
	}
	for _, c := range []string{"", "food", "Utilities"} {
		if err := ValidateCategory(c); err == nil {
			t.Errorf("ValidateCategory(%q) error = nil, want error", c)
		}
	}
}
