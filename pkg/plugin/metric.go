package plugin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/biola/nagios-plugins/pkg/convert"
)

// Metric contains a single performance value.
type Metric struct {
	Name     string
	Unit     string
	Value    interface{}
	Warning  *float64
	Critical *float64
	Min      *float64
	Max      *float64
}

// String returns the metric in performance data syntax: 'label'=value[UOM];[warn];[crit];[min];[max]
func (m *Metric) String() string {
	var res bytes.Buffer

	name := strings.ReplaceAll(m.Name, "'", "''")

	// Unknown value
	if fmt.Sprintf("%v", m.Value) == "U" {
		return fmt.Sprintf("'%s'=U", name)
	}

	num, err := convert.Num2StringE(m.Value)
	if err != nil {
		return fmt.Sprintf("'%s'=U", name)
	}
	res.WriteString(fmt.Sprintf("'%s'=%s%s", name, num, m.Unit))

	for _, val := range []*float64{m.Warning, m.Critical, m.Min, m.Max} {
		res.WriteString(";")
		if val != nil {
			res.WriteString(convert.Num2String(*val))
		}
	}

	resStr := res.String()
	// strip trailing semicolons
	for strings.HasSuffix(resStr, ";") {
		resStr = strings.TrimSuffix(resStr, ";")
	}

	return resStr
}

// Float returns a pointer to a copy of num.
func Float(num float64) *float64 {
	return &num
}
