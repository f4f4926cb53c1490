package service

import (
	"errors"
	"testing"
)

func TestZodiacForBirthdayBoundaries(t *testing.T) {
	tests := map[string]string{
		"2000-01-01": "Capricorn",
		"2000-01-19": "Capricorn",
		"2000-01-20": "Aquarius",
		"2000-02-19": "Pisces",
		"2000-03-20": "Pisces",
		"2000-03-21": "Aries",
		"2000-07-23": "Leo",
		"2000-08-22": "Leo",
		"2000-08-23": "Virgo",
		"2000-11-22": "Sagittarius",
		"2000-12-21": "Sagittarius",
		"2000-12-22": "Capricorn",
		"2000-12-31": "Capricorn",
	}
	for birthday, want := range tests {
		got, err := ZodiacForBirthday(birthday)
		if err != nil {
			t.Fatalf("ZodiacForBirthday(%s) returned error: %v", birthday, err)
		}
		if got != want {
			t.Fatalf("ZodiacForBirthday(%s) = %s, want %s", birthday, got, want)
		}
	}

	if _, err := ZodiacForBirthday("someday"); !errors.Is(err, ErrInvalidBirthday) {
		t.Fatalf("expected ErrInvalidBirthday, got %v", err)
	}
}

func TestZodiacInsights(t *testing.T) {
	all := ZodiacInsights()
	if len(all) != 12 {
		t.Fatalf("expected 12 signs, got %d", len(all))
	}
	all[0].Sign = "changed"
	if ZodiacInsights()[0].Sign != "Aries" {
		t.Fatal("ZodiacInsights must return a copy")
	}
	if InsightFor("leo").Note == "" {
		t.Fatal("expected case-insensitive lookup")
	}
	if got := InsightFor("Ophiuchus"); got.Note != "" || got.Sign != "Ophiuchus" {
		t.Fatalf("unexpected unknown insight %+v", got)
	}
}
