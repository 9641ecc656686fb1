// Package dataset provides the bundled country/continent records and helpers
// to read replacement datasets from disk.
package dataset

import (
	"bufio"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

//go:embed country_continent.csv
var countryContinentCSV string

// Bundled returns the embedded dataset, one raw `name,group` record per element.
func Bundled() []string {
	lines, _ := ReadLines(strings.NewReader(countryContinentCSV))
	return lines
}

// ReadLines returns every line of r without trailing newlines. Blank and
// malformed lines are kept; filtering is the importer's job.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read dataset")
	}
	return lines, nil
}

// ReadFile reads a dataset from path.
func ReadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer file.Close()

	return ReadLines(file)
}
