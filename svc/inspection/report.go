package inspection

import (
	"html/template"
	"io"
	"time"
)

// ReportData is the typed input for the printable inspection report.
type ReportData struct {
	Title       string
	ProjectName string
	Inspector   string
	Date        time.Time
	Score       int
	Items       []ChecklistItem
	PhotoURLs   []string
	Signature   string
}

// AnswerLabel maps a checklist answer to its printed label.
func (ReportData) AnswerLabel(a Answer) string {
	switch a {
	case AnswerCompliant:
		return "Conforme"
	case AnswerNonCompliant:
		return "Não conforme"
	default:
		return "N/A"
	}
}

var reportTemplate = template.Must(template.New("inspection-report").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; border-bottom: 2px solid #222; padding-bottom: .5rem; }
table { width: 100%; border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #999; padding: .4rem .6rem; text-align: left; font-size: .9rem; }
th { background: #f0f0f0; }
.meta { margin: 1rem 0; font-size: .95rem; }
.photos img { max-width: 200px; margin: .5rem; }
.signature { margin-top: 3rem; }
.signature img { max-height: 80px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
<p><strong>Obra:</strong> {{.ProjectName}}</p>
<p><strong>Responsável:</strong> {{.Inspector}}</p>
<p><strong>Data:</strong> {{.Date.Format "02/01/2006"}}</p>
<p><strong>Pontuação:</strong> {{.Score}}%</p>
</div>
<table>
<thead><tr><th>Item verificado</th><th>Resultado</th><th>Observação</th></tr></thead>
<tbody>
{{- range .Items}}
<tr><td>{{.Question}}</td><td>{{$.AnswerLabel .Answer}}</td><td>{{.Observation}}</td></tr>
{{- end}}
</tbody>
</table>
{{- if .PhotoURLs}}
<h2>Evidências fotográficas</h2>
<div class="photos">
{{- range .PhotoURLs}}
<img src="{{.}}" alt="evidência">
{{- end}}
</div>
{{- end}}
{{- if .Signature}}
<div class="signature">
<p>Assinatura:</p>
<img src="{{.Signature}}" alt="assinatura">
</div>
{{- end}}
</body>
</html>
`))

// RenderReport writes the printable HTML report. Layout and fields mirror the
// in-app print view; rendering goes through html/template so user-supplied
// content is escaped instead of concatenated into markup.
func RenderReport(w io.Writer, data ReportData) error {
	return reportTemplate.Execute(w, data)
}
