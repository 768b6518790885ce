package notifications

var commonTemplates = map[string]string{
	`default`: `
{{- with .Summary -}}
{{.Audited}} Audited, {{len .StaleContainers}} Stale, {{len .UpdatedContainers}} Updated, {{len .FailedUpdates}} Failed
{{- range $name, $pkgs := .StaleContainers}}
- {{$name}}: {{len $pkgs}} stale {{if eq (len $pkgs) 1}}package{{else}}packages{{end}}
{{- end -}}
{{- range .UpdatedContainers}}
- {{.}}: updated
{{- end -}}
{{- range .FailedUpdates}}
- {{.}}: update failed
{{- end -}}
{{- range .InspectionFailures}}
- {{.}}: inspection failed
{{- end -}}
{{- end -}}`,

	`porcelain.v1.summary`: `
{{- with .Summary -}}
  {{- range $name, $pkgs := .StaleContainers}}
    {{- range $pkgs}}{{$name}} {{.}}{{println}}{{end -}}
  {{- end -}}
  {{- range .InspectionFailures}}{{.}} inspection-failed{{println}}{{end -}}
  {{- range .FailedUpdates}}{{.}} update-failed{{println}}{{end -}}
{{- end -}}`,

	`json.v1`: `{{ . | ToJSON }}`,
}
