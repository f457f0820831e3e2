package cli

import (
	"testing"
	"time"
)

func TestFormatRupee(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{250, "₹250.00"},
		{1000, "₹1,000.00"},
		{12345.678, "₹12,345.68"},
		{123456, "₹1,23,456.00"},
		{1234567.5, "₹12,34,567.50"},
		{123456789, "₹12,34,56,789.00"},
		{-250, "-₹250.00"},
		{-100000, "-₹1,00,000.00"},
	}
	for _, c := range cases {
		if got := FormatRupee(c.in); got != c.want {
			t.Errorf("FormatRupee(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatRupeeShort(t *testing.T) {
	if got := FormatRupeeShort(250); got != "₹250" {
		t.Fatalf("FormatRupeeShort(250) = %q, want ₹250", got)
	}
	if got := FormatRupeeShort(250.5); got != "₹250.50" {
		t.Fatalf("FormatRupeeShort(250.5) = %q, want ₹250.50", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount("kg", 12.5); got != "12.5 kg" {
		t.Fatalf("FormatAmount(kg) = %q", got)
	}
	if got := FormatAmount("INR", 12.5); got != "₹12.50" {
		t.Fatalf("FormatAmount(INR) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Fatalf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-999); got != "-999" {
		t.Fatalf("FormatNumber(-999) = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(1500, 1000); got != "+₹500.00" {
		t.Fatalf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(1000, 1500); got != "-₹500.00" {
		t.Fatalf("FormatDelta down = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "17 Oct 2026" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Fatalf("FormatDate(zero) = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0192f0aa-1111-2222"); got != "0192f0aa" {
		t.Fatalf("ShortID = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Fatalf("ShortID(short) = %q", got)
	}
}
