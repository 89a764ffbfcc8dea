package alert

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/jpalmerr/pulsecheck"
)

var htmlTemplate = template.Must(template.New("alert").Parse(`<h2>{{.Heading}}</h2>
<ul>
{{- range .Lines}}
<li><strong>{{.Name}}</strong> (<a href="{{.Address}}">{{.Address}}</a>): {{.Status}}, {{.Attempts}}, expect {{.Rule}}</li>
{{- end}}
</ul>
<p>{{.Footer}}</p>
`))

type htmlLine struct {
	Name     string
	Address  string
	Status   string
	Attempts string
	Rule     string
}

// Compose renders the alert for the down targets of report.
//
// Each down target gets one line with its last status code or failure
// reason, the number of attempts made and the rule it was judged by.
func Compose(subjectPrefix string, report pulsecheck.Report) Message {
	down := len(report.Down)
	heading := fmt.Sprintf("%d of %d %s down", down, report.Totals.Checked, plural(report.Totals.Checked, "target", "targets"))

	subject := heading
	if subjectPrefix != "" {
		subject = subjectPrefix + " " + heading
	}

	footer := fmt.Sprintf("Total down: %d", down)
	if report.RunID != "" {
		footer += fmt.Sprintf(" (run %s)", report.RunID)
	}

	var text strings.Builder
	text.WriteString(heading)
	text.WriteString("\n\n")

	lines := make([]htmlLine, 0, down)
	for _, r := range report.Down {
		line := htmlLine{
			Name:     r.Name,
			Address:  r.Address,
			Status:   describeLast(r.LastAttempt),
			Attempts: fmt.Sprintf("%d %s", r.AttemptCount, plural(r.AttemptCount, "attempt", "attempts")),
			Rule:     r.Rule.String(),
		}
		lines = append(lines, line)
		fmt.Fprintf(&text, "- %s (%s): %s, %s, expect %s\n", line.Name, line.Address, line.Status, line.Attempts, line.Rule)
	}

	text.WriteString("\n")
	text.WriteString(footer)
	text.WriteString("\n")

	body := text.String()
	return Message{
		Subject: subject,
		Text:    body,
		HTML: renderHTML(htmlTemplate, struct {
			Heading string
			Lines   []htmlLine
			Footer  string
		}{heading, lines, footer}, body),
	}
}

// renderHTML executes tmpl with data. On failure the escaped plain text is
// returned in a <pre> block so an alert never goes out with an empty body.
func renderHTML(tmpl *template.Template, data any, plain string) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "<pre>" + template.HTMLEscapeString(plain) + "</pre>"
	}
	return buf.String()
}

// describeLast renders the final attempt of a down target.
func describeLast(a pulsecheck.Attempt) string {
	switch {
	case a.StatusCode == 0 && a.FailureReason != "":
		return a.FailureReason
	case a.StatusCode == 0:
		return "no response"
	case a.StatusText != "":
		return fmt.Sprintf("HTTP %d %s", a.StatusCode, a.StatusText)
	default:
		return fmt.Sprintf("HTTP %d", a.StatusCode)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
