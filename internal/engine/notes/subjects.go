package notes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSubject is returned when a subject is not one of the fixed catalogue entries.
var ErrUnknownSubject = errors.New("unknown subject")

// Subject is one of the fixed academic topics a run is parameterized by.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var subjects = []Subject{
	{ID: "dbms", Name: "Database Management Systems (DBMS)"},
	{ID: "os", Name: "Operating Systems (OS)"},
	{ID: "oops", Name: "Object-Oriented Programming (OOPS)"},
	{ID: "cn", Name: "Computer Networks (CN)"},
}

// Subjects returns the catalogue in display order.
func Subjects() []Subject {
	out := make([]Subject, len(subjects))
	copy(out, subjects)
	return out
}

// LookupSubject resolves a subject by ID or full name, case-insensitively.
func LookupSubject(s string) (Subject, error) {
	s = strings.TrimSpace(s)
	for _, sub := range subjects {
		if strings.EqualFold(s, sub.ID) || strings.EqualFold(s, sub.Name) {
			return sub, nil
		}
	}
	return Subject{}, fmt.Errorf("%w: %q", ErrUnknownSubject, s)
}

// FileName is the name of the PDF exported for this subject.
func (s Subject) FileName() string {
	return ExportFileName(s.Name)
}
