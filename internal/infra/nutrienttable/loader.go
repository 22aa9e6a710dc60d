// Package nutrienttable loads the reference nutrient table from CSV or
// XLSX, on disk or in an S3-compatible bucket.
package nutrienttable

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

type field int

const (
	fieldFood field = iota
	fieldReference
	fieldEnergy
	fieldProtein
	fieldFat
	fieldCarbs
	fieldCalcium
	fieldIron
	fieldCount
)

// columns lists accepted header names per field. The first name is the
// one reported in errors.
var columns = [fieldCount][]string{
	fieldFood:      {"식품명", "food"},
	fieldReference: {"영양성분함량기준량", "referenceQuantity"},
	fieldEnergy:    {"에너지(kcal)", "energyKcal"},
	fieldProtein:   {"단백질(g)", "proteinG"},
	fieldFat:       {"지방(g)", "fatG"},
	fieldCarbs:     {"탄수화물(g)", "carbsG"},
	fieldCalcium:   {"칼슘(mg)", "calciumMg"},
	fieldIron:      {"철(mg)", "ironMg"},
}

// ErrMissingIndex is returned when the header has no food-name column.
var ErrMissingIndex = errors.New("nutrient table has no 식품명 column")

// Load reads src fully and builds the table. Any failure is fatal to
// startup; there is no partial table.
func Load(ctx context.Context, src Source) (*nutrient.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTable, "open nutrient table", err)
	}
	defer rc.Close()

	var records [][]string
	switch ext := strings.ToLower(filepath.Ext(src.Name())); ext {
	case ".csv":
		records, err = readCSV(rc)
	case ".xlsx":
		records, err = readXLSX(rc)
	default:
		err = fmt.Errorf("unsupported table format %q", ext)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTable, "read nutrient table "+src.Name(), err)
	}

	rows, err := parseRecords(records)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTable, "parse nutrient table "+src.Name(), err)
	}
	table, err := nutrient.NewTable(rows)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTable, "index nutrient table "+src.Name(), err)
	}
	return table, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func parseRecords(records [][]string) ([]nutrient.Row, error) {
	if len(records) == 0 {
		return nil, errors.New("nutrient table is empty")
	}
	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]nutrient.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		food := strings.TrimSpace(cell(rec, index[fieldFood]))
		if food == "" {
			if blank(rec) {
				continue
			}
			return nil, fmt.Errorf("row %d: %s is empty", line, columns[fieldFood][0])
		}
		row := nutrient.Row{
			Food:              food,
			ReferenceQuantity: strings.TrimSpace(cell(rec, index[fieldReference])),
		}
		targets := []struct {
			f   field
			dst *float64
		}{
			{fieldEnergy, &row.Values.EnergyKcal},
			{fieldProtein, &row.Values.ProteinG},
			{fieldFat, &row.Values.FatG},
			{fieldCarbs, &row.Values.CarbsG},
			{fieldCalcium, &row.Values.CalciumMg},
			{fieldIron, &row.Values.IronMg},
		}
		for _, t := range targets {
			v, err := number(cell(rec, index[t.f]))
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", line, columns[t.f][0], err)
			}
			*t.dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerIndex(header []string) ([fieldCount]int, error) {
	var index [fieldCount]int
	for f := range index {
		index[f] = -1
	}
	for pos, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for f, aliases := range columns {
			for _, alias := range aliases {
				if strings.EqualFold(name, alias) && index[f] == -1 {
					index[f] = pos
				}
			}
		}
	}
	if index[fieldFood] == -1 {
		return index, ErrMissingIndex
	}
	var missing []string
	for f, pos := range index {
		if pos == -1 {
			missing = append(missing, columns[f][0])
		}
	}
	if len(missing) > 0 {
		return index, fmt.Errorf("nutrient table missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func cell(rec []string, pos int) string {
	if pos < 0 || pos >= len(rec) {
		return ""
	}
	return rec[pos]
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// number treats empty and "-" cells as 0.
func number(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" || raw == "-" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

// LoadBytes parses an in-memory table; name selects the format.
func LoadBytes(ctx context.Context, name string, data []byte) (*nutrient.Table, error) {
	return Load(ctx, bytesSource{name: name, data: data})
}

type bytesSource struct {
	name string
	data []byte
}

func (s bytesSource) Name() string { return s.name }

func (s bytesSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
