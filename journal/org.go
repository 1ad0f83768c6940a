package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

type runOrg struct {
	Run        RunRecord
	Valuations []ValuationRecord
	Breaches   int
}

var runOrgFuncs = template.FuncMap{
	"money": func(x float64) string { return decimal.NewFromFloat(x).StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run and its valuations as an Org-mode entry.
func FormatRunOrg(run RunRecord, vals []ValuationRecord) (string, error) {
	v := runOrg{Run: run, Valuations: vals}
	for _, val := range vals {
		if !val.Allowed {
			v.Breaches++
		}
	}

	buf := new(bytes.Buffer)
	if err := runOrgTemplate.Execute(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func WriteRunOrg(path string, run RunRecord, vals []ValuationRecord) error {
	s, err := FormatRunOrg(run, vals)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `
* EXPOSURE RUN: {{.Run.BaseCurrency}} {{date .Run.Start}} to {{date .Run.End}}
:PROPERTIES:
:RUN_ID:      {{if .Run.RunID}}{{.Run.RunID}}{{else}}(run-id?){{end}}
:DATASET:     {{if .Run.Dataset}}{{.Run.Dataset}}{{else}}(dataset?){{end}}
:BASE:        {{.Run.BaseCurrency}}
:CURRENCIES:  {{range $i, $c := .Run.Currencies}}{{if $i}} {{end}}{{$c}}{{end}}
:START_DATE:  {{date .Run.Start}}
:END_DATE:    {{date .Run.End}}
:SIMULATIONS: {{.Run.Simulations}}
:HORIZON:     {{.Run.Horizon}}
:SEED:        {{.Run.Seed}}
:PAY_LEG:     {{.Run.PayLeg}}
:CREATED:     [{{(orTime .Run.Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Valuations
| Trade | Batch date | Days | MTM | Peak EE | Peak day | Limits |
|-------+------------+------+-----+---------+----------+--------|
{{- range .Valuations }}
| {{.TradeID}} | {{date .BatchDate}} | {{.DaysToMaturity}}{{if .Truncated}}*{{end}} | {{money .MTM}} | {{money .PeakEE}} | {{.PeakEEDay}} | {{if .Allowed}}ok{{else}}{{.Violations}}{{end}} |
{{- end }}

** Summary
- Valuations:  *{{len .Valuations}}*
- Breaches:    *{{.Breaches}}*
`
