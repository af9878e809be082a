package render

import (
	"bytes"
	"html/template"
)

var page = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title.Product}} - {{.Title.Subtitle}}</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  @page { size: A4; }
  body { font-family: -apple-system, 'Segoe UI', Roboto, Ubuntu, sans-serif; line-height: 1.6; color: #333; padding: 20px; }
  .header { text-align: center; border-bottom: 3px solid #2563eb; padding-bottom: 20px; margin-bottom: 30px; }
  .header h1 { color: #2563eb; font-size: 32px; margin-bottom: 5px; }
  .header p { color: #6b7280; font-size: 16px; }
  .header .meta { font-size: 12px; margin-top: 6px; }
  .section { margin-bottom: 25px; }
  .page-break { page-break-before: always; break-before: page; }
  .section-title { font-size: 20px; font-weight: bold; color: #1f2937; border-bottom: 2px solid #e5e7eb; padding-bottom: 8px; margin-bottom: 15px; }
  .subheading { font-size: 16px; font-weight: 600; color: #1f2937; margin: 14px 0 8px; }
  .field { margin-bottom: 12px; page-break-inside: avoid; }
  .field-label { font-weight: 600; color: #4b5563; font-size: 14px; margin-bottom: 4px; }
  .field-value { color: #1f2937; font-size: 14px; padding: 8px 8px 8px 12px; background-color: #f9fafb; border-left: 3px solid #2563eb; min-height: 20px; white-space: pre-wrap; }
  .field-value.empty { color: #9ca3af; font-style: italic; }
  .field-value ul, .field-value ol { padding-left: 20px; }
  .note { background-color: #fefce8; border-left: 4px solid #facc15; padding: 10px; font-size: 13px; color: #854d0e; margin-bottom: 12px; }
  .check { display: inline-block; width: 14px; height: 14px; border: 2px solid #9ca3af; margin-right: 6px; text-align: center; line-height: 10px; font-size: 11px; }
  .check.round { border-radius: 50%; }
  table { width: 100%; border-collapse: collapse; margin-top: 10px; }
  th { background-color: #f3f4f6; padding: 8px; text-align: left; border: 1px solid #d1d5db; font-weight: 600; font-size: 12px; }
  td { padding: 8px; border: 1px solid #d1d5db; font-size: 12px; }
  tfoot td { background-color: #f9fafb; font-weight: 600; }
  tfoot td.label { text-align: right; }
  .footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #e5e7eb; text-align: center; color: #6b7280; font-size: 12px; }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title.Product}}</h1>
  <p>{{.Title.Subtitle}}</p>
  <p class="meta">Submitted: {{.Title.SubmittedAt}}</p>
  {{- if .Title.SearcherName}}
  <p class="meta"><strong>Searcher:</strong> {{.Title.SearcherName}}</p>
  {{- end}}
</div>
{{range .Sections}}
<div class="section{{if .PageBreakBefore}} page-break{{end}}" data-section="{{.Number}}">
  <div class="section-title">{{.Number}}. {{.Title}}</div>
  {{- range .Blocks}}
  {{- if eq .Kind "heading"}}
  <div class="subheading">{{.Label}}</div>
  {{- else if eq .Kind "note"}}
  <div class="note">{{.Value}}</div>
  {{- else if eq .Kind "field"}}
  <div class="field">
    <div class="field-label">{{.Label}}</div>
    <div class="field-value{{if .Empty}} empty{{end}}">{{.Value}}</div>
  </div>
  {{- else if eq .Kind "list"}}
  <div class="field">
    <div class="field-label">{{.Label}}</div>
    <div class="field-value">{{if .Ordered}}<ol>{{range .Items}}<li>{{.}}</li>{{end}}</ol>{{else}}<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>{{end}}</div>
  </div>
  {{- else if eq .Kind "checklist"}}
  <div class="field">
    <div class="field-label">{{.Label}}</div>
    {{- range .Checks}}
    <div><span class="check">{{if .Checked}}✓{{end}}</span>{{.Label}}</div>
    {{- end}}
  </div>
  {{- else if eq .Kind "choice"}}
  <div class="field">
    <div class="field-label">{{.Label}}</div>
    {{- range .Options}}
    <span><span class="check round">{{if .Selected}}✓{{end}}</span>{{.Label}}</span>
    {{- end}}
  </div>
  {{- else if eq .Kind "table"}}
  <div class="field">
    <div class="field-label">{{.Label}}</div>
    <table>
      <thead><tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr></thead>
      <tbody>
      {{- range .Table.Rows}}
        <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
      {{- end}}
      </tbody>
      {{- with .Table.Footer}}
      <tfoot><tr><td class="label" colspan="{{.Span}}">{{.Label}}</td><td>{{.Value}}</td></tr></tfoot>
      {{- end}}
    </table>
  </div>
  {{- end}}
  {{- end}}
</div>
{{end}}
<div class="footer">
  <p>{{.Footer.Product}}</p>
  <p>This document was generated on {{.Footer.GeneratedAt}}</p>
</div>
</body>
</html>
`))

// HTML serialises the document. Every value is escaped for its position in the
// markup, so field content is never interpreted as markup.
func HTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
