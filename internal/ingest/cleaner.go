package ingest

import (
	"regexp"
	"strings"

	"estatesim/server/internal/models"
)

var (
	ordinalReplacer = strings.NewReplacer("1st", "first", "2nd", "second", "3rd", "third")
	digitRun        = regexp.MustCompile(`(\d+)`)
	camelBoundary   = regexp.MustCompile(`([a-z])([A-Z])`)
	nonAlnum        = regexp.MustCompile(`[^a-z0-9]+`)
	underscoreRun   = regexp.MustCompile(`_+`)
)

// naTokens are cell values that mean "no value" in raw exports.
var naTokens = map[string]bool{
	"NA":   true,
	"N/A":  true,
	"NULL": true,
	"null": true,
	"NaN":  true,
	"nan":  true,
	"None": true,
}

// SnakeCase converts a raw column name to snake_case:
// "TotalBsmtSF" -> "total_bsmt_sf", "1stFlrSF" -> "first_flr_sf".
func SnakeCase(name string) string {
	name = ordinalReplacer.Replace(name)
	name = digitRun.ReplaceAllString(name, "_${1}_")
	name = camelBoundary.ReplaceAllString(name, "$1 $2")
	name = strings.ToLower(name)
	name = nonAlnum.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	return underscoreRun.ReplaceAllString(name, "_")
}

// RenameColumns rewrites the dataset header and every record key to
// snake_case, in place.
func (d *Dataset) RenameColumns() {
	mapping := make(map[string]string, len(d.Columns))
	for i, column := range d.Columns {
		renamed := SnakeCase(column)
		mapping[column] = renamed
		d.Columns[i] = renamed
	}
	for i, record := range d.Records {
		renamed := make(models.RawRecord, len(record))
		for key, value := range record {
			if newKey, ok := mapping[key]; ok {
				renamed[newKey] = value
			} else {
				renamed[SnakeCase(key)] = value
			}
		}
		d.Records[i] = renamed
	}
}

// NormalizeMissing drops cells holding NA tokens so they read as absent,
// matching how empty cells are treated at load time.
func (d *Dataset) NormalizeMissing() {
	for _, record := range d.Records {
		for key, value := range record {
			if naTokens[value] {
				delete(record, key)
			}
		}
	}
}
