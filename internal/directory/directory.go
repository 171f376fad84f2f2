// Package directory loads the associate directory, the read-only reference
// data resolving an associate email to their name, reporting lead,
// department and line of business.
//
// The directory is supplied as a CSV export with a header row containing at
// least: Work Email, Full Name, Reporting To, Department, LOB.
package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned when no associate matches the looked-up email.
var ErrNotFound = errors.New("associate not found")

// Associate is one entry of the directory.
type Associate struct {
	Email      string
	Name       string
	TeamLead   string
	// TeamLeadEmail is resolved by looking the lead's name back up in the
	// directory; empty when the lead has no entry of their own.
	TeamLeadEmail string
	Department    string
	LOB           string
}

// Directory is an in-memory associate directory with normalized email keys.
type Directory struct {
	byEmail map[string]Associate
}

// LoadFile loads a directory from a CSV file.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads a directory from CSV data.
func Load(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read directory header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Work Email", "Full Name", "Reporting To"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("directory missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	byEmail := make(map[string]Associate)
	byName := make(map[string]string) // normalized full name -> email

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read directory row: %w", err)
		}

		email := normalizeEmail(field(row, "Work Email"))
		if email == "" {
			continue
		}

		assoc := Associate{
			Email:      email,
			Name:       field(row, "Full Name"),
			TeamLead:   field(row, "Reporting To"),
			Department: field(row, "Department"),
			LOB:        field(row, "LOB"),
		}
		byEmail[email] = assoc
		if assoc.Name != "" {
			byName[strings.ToLower(assoc.Name)] = email
		}
	}

	// Second pass: resolve each lead's email through their own entry.
	for email, assoc := range byEmail {
		if leadEmail, ok := byName[strings.ToLower(assoc.TeamLead)]; ok {
			assoc.TeamLeadEmail = leadEmail
			byEmail[email] = assoc
		}
	}

	return &Directory{byEmail: byEmail}, nil
}

// Lookup resolves an associate by email. Lookup is case-insensitive and
// ignores surrounding whitespace.
func (d *Directory) Lookup(email string) (Associate, error) {
	assoc, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return Associate{}, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(email))
	}
	return assoc, nil
}

// Len returns the number of directory entries.
func (d *Directory) Len() int {
	return len(d.byEmail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
