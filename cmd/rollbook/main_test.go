package main

import (
	"flag"
	"testing"
)

func TestRequireWeekday(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"2024-05-06", true},  // Monday
		{"2024-05-10", true},  // Friday
		{"2024-05-11", false}, // Saturday
		{"2024-05-12", false}, // Sunday
		{"2024-5-6", false},   // non-canonical
		{"yesterday", false},
	}
	for _, tc := range cases {
		err := requireWeekday(tc.date)
		if tc.ok && err != nil {
			t.Errorf("requireWeekday(%q) = %v, want nil", tc.date, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("requireWeekday(%q) = nil, want error", tc.date)
		}
	}
}

func TestNoteFlagSetDistinguishesEmptyFromUnset(t *testing.T) {
	fs := flag.NewFlagSet("mark", flag.ContinueOnError)
	fs.String("notes", "", "")
	if err := fs.Parse([]string{"-notes", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !noteFlagSet(fs) {
		t.Fatal("explicit empty -notes should count as set")
	}

	fs2 := flag.NewFlagSet("mark", flag.ContinueOnError)
	fs2.String("notes", "", "")
	if err := fs2.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if noteFlagSet(fs2) {
		t.Fatal("unset -notes should not count as set")
	}
}
