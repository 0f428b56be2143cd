package resource

import (
	"encoding/csv"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"alpha_miner/internal/constant"
	"alpha_miner/internal/viewer"
)

// ReadOperators loads the static operator reference list from a CSV file with
// header row `Operator, Category, Description`. A missing file yields an empty
// list, not an error. The list is capped at 100 entries.
func ReadOperators(path string) ([]viewer.Operator, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("operators file not found: %s", path)
			return []viewer.Operator{}, nil
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []viewer.Operator{}, nil
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	operators := make([]viewer.Operator, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		operators = append(operators, viewer.Operator{
			Name:        field(record, "Operator"),
			Category:    field(record, "Category"),
			Description: field(record, "Description"),
		})
		if len(operators) >= constant.OperatorLimit {
			break
		}
	}
	return operators, nil
}
