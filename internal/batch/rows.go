// Package batch drives many renders: it reads the show table, unpacks the
// video archive, names outputs and runs rows on a worker pool.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ivlev/promoreel/internal/scene"
)

var ErrNoFilenameColumn = errors.New("csv has no filename column")

// Header aliases, matched case-sensitively first and then case-insensitively.
var (
	FilenameHeaders = []string{"Filename", "File Name", "Video", "filename"}
	CityHeaders     = []string{"City", "Location", "city"}
	DateHeaders     = []string{"Date"}
	VenueHeaders    = []string{"Venue"}
	TicketHeaders   = []string{"Ticket_Link", "Ticket Link", "Tickets"}
)

// Columns maps row fields to CSV column indexes; -1 means absent.
type Columns struct {
	Filename, City, Date, Venue, Ticket int
}

func findColumn(header []string, aliases []string) int {
	for _, a := range aliases {
		for i, h := range header {
			if h == a {
				return i
			}
		}
	}
	for _, a := range aliases {
		for i, h := range header {
			if strings.EqualFold(h, a) {
				return i
			}
		}
	}
	return -1
}

// DetectColumns resolves header aliases. Only the filename column is
// required.
func DetectColumns(header []string) (Columns, error) {
	clean := make([]string, len(header))
	for i, h := range header {
		clean[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	c := Columns{
		Filename: findColumn(clean, FilenameHeaders),
		City:     findColumn(clean, CityHeaders),
		Date:     findColumn(clean, DateHeaders),
		Venue:    findColumn(clean, VenueHeaders),
		Ticket:   findColumn(clean, TicketHeaders),
	}
	if c.Filename < 0 {
		return c, fmt.Errorf("%w (have %s)", ErrNoFilenameColumn, strings.Join(clean, ", "))
	}
	return c, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ReadRows parses the show table. Blank lines are skipped; rows keep file
// order.
func ReadRows(r io.Reader) ([]scene.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoFilenameColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := DetectColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []scene.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if allEmpty(rec) {
			continue
		}
		rows = append(rows, scene.Row{
			Filename:   field(rec, cols.Filename),
			City:       field(rec, cols.City),
			Date:       field(rec, cols.Date),
			Venue:      field(rec, cols.Venue),
			TicketLink: field(rec, cols.Ticket),
		})
	}
	return rows, nil
}

func ReadRowsFile(path string) ([]scene.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

func allEmpty(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
