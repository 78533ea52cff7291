package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadCSV parses rows of letter,question,answer. A leading header row and
// rows with fewer than three fields are skipped.
func ReadCSV(r io.Reader) ([]Entry, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	var entries []Entry
	line := 0
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse questions csv: %w", err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "letter") {
			continue
		}
		if len(record) < 3 {
			log.Warn().Int("line", line).Strs("record", record).Msg("[ReadCSV] skipping invalid record")
			continue
		}

		entries = append(entries, Entry{
			Letter:   record[0],
			Question: record[1],
			Answer:   record[2],
		})
	}
	return entries, nil
}

// LoadCSVFile builds a Memory catalog from a CSV file on disk.
func LoadCSVFile(filePath string) (*Memory, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open questions file %s: %w", filePath, err)
	}
	defer f.Close()

	entries, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return NewMemory(entries, nil)
}
