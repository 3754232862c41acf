package review

// {{if $i}}, {{end}} adds a comma before every element but the first one.

var findingsTemplate = `{{ range . }}  database {{ .Name }}
{{ range .Collections }}    collection {{ .Name }}
{{ range .Indexes }}{{ if .Unused }}        index {{ .Name }} {{ .Key }} | has never been used
{{ end }}{{ if .CoveredBy }}        index {{ .Name }} {{ .Key }} | is redundant and covered by the following indexes : [{{ range $i, $name := .CoveredBy }}{{ if $i }}, {{ end }}{{ $name }}{{ end }}]
{{ end }}{{ end }}{{ end }}{{ end }}`

var summaryTemplate = `
Index review of {{ .ServerAlias }}{{ if .Host }} ({{ .Host }}){{ end }}{{ if not .CapturedAt.IsZero }} captured at {{ .CapturedAt.Format "2006-01-02 15:04:05" }} UTC{{ end }}
  databases: {{ .Databases }}, collections: {{ .Collections }}, indexes checked: {{ .Indexes }}
  unused: {{ .Unused }}, redundant: {{ .Redundant }}
{{- if .Indexes }}
  index usage (ops): min {{ printf "%.0f" .MinOps }}, median {{ printf "%.1f" .MedianOps }}, max {{ printf "%.0f" .MaxOps }}
{{- end }}
{{- if .Uptime }}
  server uptime: {{ .Uptime }}
{{- end }}
`
