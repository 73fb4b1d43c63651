package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/pkg"
)

var ErrMalformedCSV = errors.New("malformed exercises csv")

const (
	columnName         = "Exercise Name"
	columnMuscleGroups = "Muscle Group(s)"
	columnInstructions = "Instructions"
	columnTips         = "Tips"
)

// Load reads a catalog from CSV with a header row. Only the name and
// muscle group columns are required.
func Load(r *csv.Reader) (*Catalog, error) {
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %s", ErrMalformedCSV, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameIdx, ok := columns[columnName]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, columnName)
	}
	groupsIdx, ok := columns[columnMuscleGroups]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, columnMuscleGroups)
	}
	instructionsIdx, hasInstructions := columns[columnInstructions]
	tipsIdx, hasTips := columns[columnTips]

	var entries []Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedCSV, err)
		}

		e := Entry{
			Name:         field(record, nameIdx),
			MuscleGroups: splitList(field(record, groupsIdx)),
			Tips:         []string{},
		}
		if hasInstructions {
			e.Instructions = field(record, instructionsIdx)
		}
		if hasTips {
			e.Tips = splitList(field(record, tipsIdx))
		}
		entries = append(entries, e)
	}

	return New(entries), nil
}

// LoadFile never fails hard: on any error the catalog degrades to empty
// and the error is returned for logging.
func LoadFile(path string) (*Catalog, error) {
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return Empty(), fmt.Errorf("stat exercises csv: %w", err)
	}
	if !exists {
		return Empty(), fmt.Errorf("exercises csv [%s] not found", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Empty(), fmt.Errorf("open exercises csv: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("close exercises csv file: %s", err)
		}
	}()

	log.Debugf("reading exercises CSV [%s] ...", path)
	c, err := Load(csv.NewReader(f))
	if err != nil {
		return Empty(), err
	}
	log.Debugf("exercises CSV read %d exercises", c.Len())

	return c, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
