package notes

import (
	"errors"
	"testing"
)

func TestSubjectsCatalogue(t *testing.T) {
	got := Subjects()
	if len(got) != 4 {
		t.Fatalf("len(Subjects()) = %d, want 4", len(got))
	}
	got[0].Name = "mutated"
	if Subjects()[0].Name == "mutated" {
		t.Error("Subjects() must return a copy")
	}
}

func TestLookupSubject(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
	}{
		{"dbms", "dbms"},
		{"OS", "os"},
		{" oops ", "oops"},
		{"Computer Networks (CN)", "cn"},
		{"operating systems (os)", "os"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := LookupSubject(tt.in)
			if err != nil {
				t.Fatalf("LookupSubject(%q): %v", tt.in, err)
			}
			if s.ID != tt.wantID {
				t.Errorf("LookupSubject(%q).ID = %q, want %q", tt.in, s.ID, tt.wantID)
			}
		})
	}

	for _, bad := range []string{"", "chemistry", "Operating Systems"} {
		if _, err := LookupSubject(bad); !errors.Is(err, ErrUnknownSubject) {
			t.Errorf("LookupSubject(%q) error = %v, want ErrUnknownSubject", bad, err)
		}
	}
}

func TestSubjectFileName(t *testing.T) {
	s, _ := LookupSubject("os")
	if got, want := s.FileName(), "Operating Systems (OS)_study_notes.pdf"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}
