package models

import "testing"

func TestParseCourseDetails(t *testing.T) {
	d, err := ParseCourseDetails(`{"subtitle":"Crash course","description":"Full JEE syllabus","level":"advanced"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Subtitle != "Crash course" || d.Description != "Full JEE syllabus" || d.Level != "advanced" {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestParseCourseDetailsRejectsMissingFields(t *testing.T) {
	if _, err := ParseCourseDetails(`{"subtitle":"only a subtitle"}`); err == nil {
		t.Fatalf("expected error when description is missing")
	}
	if _, err := ParseCourseDetails(`{"description":"only a description"}`); err == nil {
		t.Fatalf("expected error when subtitle is missing")
	}
}

func TestParseCourseDetailsRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseCourseDetails(`{"subtitle": `); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestParseVideoLinksAssignsUniqueIDs(t *testing.T) {
	links, err := ParseVideoLinks(`[
		{"videoTitle":"Intro","videoLink":"https://cdn.example.com/v1","duration":"10:00"},
		{"videoTitle":"Vectors","videoLink":"https://cdn.example.com/v2"}
	]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].VideoID == "" || links[1].VideoID == "" {
		t.Fatalf("expected generated videoIds")
	}
	if links[0].VideoID == links[1].VideoID {
		t.Fatalf("videoIds must be unique")
	}
}

func TestParseVideoLinksRejectsIncompleteEntry(t *testing.T) {
	if _, err := ParseVideoLinks(`[{"videoTitle":"no link"}]`); err == nil {
		t.Fatalf("expected error when videoLink is missing")
	}
	if _, err := ParseVideoLinks(`not json`); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestParsePricePaidFloor(t *testing.T) {
	if _, err := ParsePrice("0.5", 1, true); err == nil {
		t.Fatalf("expected error for paid price below 1")
	}
	if _, err := ParsePrice("", 1, true); err == nil {
		t.Fatalf("expected error for missing required price")
	}
	p, err := ParsePrice("499.99", 1, true)
	if err != nil || p != 499.99 {
		t.Fatalf("expected 499.99, got %v, %v", p, err)
	}
}

func TestParsePriceUnpaidAllowsZero(t *testing.T) {
	p, err := ParsePrice("0", 0, false)
	if err != nil || p != 0 {
		t.Fatalf("expected 0, got %v, %v", p, err)
	}
	p, err = ParsePrice("", 0, false)
	if err != nil || p != 0 {
		t.Fatalf("expected default 0 for omitted price, got %v, %v", p, err)
	}
	if _, err = ParsePrice("-10", 0, false); err == nil {
		t.Fatalf("expected error for negative price")
	}
	if _, err = ParsePrice("free", 0, false); err == nil {
		t.Fatalf("expected error for non-numeric price")
	}
}

func TestParseRating(t *testing.T) {
	r, err := ParseRating("")
	if err != nil || r != 0 {
		t.Fatalf("expected default 0, got %v, %v", r, err)
	}
	r, err = ParseRating("4.5")
	if err != nil || r != 4.5 {
		t.Fatalf("expected 4.5, got %v, %v", r, err)
	}
	if _, err = ParseRating("6"); err == nil {
		t.Fatalf("expected error for rating above 5")
	}
}
