package utils

import (
	"fmt"
	"reflect"
	"strings"
)

// ASCIITableHeader describes a single column.
type ASCIITableHeader struct {
	Name     string // name in table header
	Field    string // attribute name in data row
	Centered bool   // flag wether column is centered
	size     int    // calculated max size of column
}

// ASCIITable renders rows (a slice of structs) as markdown style table. Only string
// and fmt.Stringer fields are supported.
func ASCIITable(header []ASCIITableHeader, rows interface{}) (string, error) {
	dataRows := reflect.ValueOf(rows)
	if dataRows.Kind() != reflect.Slice {
		return "", fmt.Errorf("rows is not a slice")
	}

	cells := make([][]string, dataRows.Len())
	for i := range header {
		header[i].size = len(header[i].Name)
	}
	for i := 0; i < dataRows.Len(); i++ {
		rowVal := reflect.Indirect(dataRows.Index(i))
		if rowVal.Kind() != reflect.Struct {
			return "", fmt.Errorf("row %d is not a struct", i)
		}
		cells[i] = make([]string, len(header))
		for num, head := range header {
			value, err := asciiTableRowValue(rowVal, head)
			if err != nil {
				return "", err
			}
			cells[i][num] = value
			header[num].size = max(header[num].size, len(value))
		}
	}

	var out strings.Builder
	for _, head := range header {
		fmt.Fprintf(&out, "| %-*s ", head.size, head.Name)
	}
	out.WriteString("|\n")

	for _, head := range header {
		centered := " "
		if head.Centered {
			centered = ":"
		}
		fmt.Fprintf(&out, "|%s%s%s", centered, strings.Repeat("-", head.size), centered)
	}
	out.WriteString("|\n")

	for _, row := range cells {
		for num, head := range header {
			fmt.Fprintf(&out, "| %-*s ", head.size, row[num])
		}
		out.WriteString("|\n")
	}

	return out.String(), nil
}

func asciiTableRowValue(rowVal reflect.Value, head ASCIITableHeader) (string, error) {
	field := rowVal.FieldByName(head.Field)
	if !field.IsValid() {
		return "", nil
	}

	if stringer, ok := field.Interface().(fmt.Stringer); ok {
		return strings.ReplaceAll(stringer.String(), "|", "\\|"), nil
	}
	if field.Kind() != reflect.String {
		return "", fmt.Errorf("unsupported struct attribute type for field %s: %s", head.Field, field.Type().String())
	}

	return strings.ReplaceAll(field.String(), "|", "\\|"), nil
}
