package email

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// Field is one labelled value reported in a notification.
type Field struct {
	Label     string
	Value     string
	Multiline bool
}

// Notification is the single source both renderings are produced from.
type Notification struct {
	Title     string
	MessageID string
	Timestamp string
	Fields    []Field
	Footer    string
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("notification.html").Funcs(htmltemplate.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .meta { font-size: 12px; color: #6b7280; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
    </div>
    <div class="content">
        <div class="info-box">
{{- range .Fields}}
            {{- if .Multiline}}
            <p><span class="label">{{.Label}}:</span></p>
            <p>{{range $i, $l := lines .Value}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
            {{- else}}
            <p><span class="label">{{.Label}}:</span> {{.Value}}</p>
            {{- end}}
{{- end}}
        </div>
        <p class="meta">Message ID: {{.MessageID}}<br>Received: {{.Timestamp}}</p>
    </div>
    <div class="footer">
        <p>{{.Footer}}</p>
    </div>
</body>
</html>
`))

var textTmpl = texttemplate.Must(texttemplate.New("notification.txt").Parse(`{{.Title}}

{{range .Fields}}{{if .Multiline}}{{.Label}}:
{{.Value}}
{{else}}{{.Label}}: {{.Value}}
{{end}}{{end}}
Message ID: {{.MessageID}}
Received: {{.Timestamp}}

--
{{.Footer}}
`))

// RenderHTML renders the rich representation.
func (n Notification) RenderHTML() (string, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderText renders the plain text representation.
func (n Notification) RenderText() (string, error) {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
