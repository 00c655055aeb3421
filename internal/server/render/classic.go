package render

import "html/template"

var classicTemplate = template.Must(template.New("classic").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<form id="upload-form" enctype="multipart/form-data" method="post" action="/">
  <input name="file_upload" type="file" multiple>
  <input type="submit" value="Upload">
</form>
<progress id="upload-progress" max="100" value="0" hidden></progress>
<p id="status"></p>
<hr>
<ul>
{{- if .Parent}}
  <li><a href="{{.Parent}}">../</a></li>
{{- end}}
{{- range .Rows}}
  <li>
    <a href="{{.Href}}">{{.Name}}</a>
    {{- if not .IsDir}} ({{.Size}}){{end}}
    {{- if .Deletable}}
    <button type="button" data-file="{{.Name}}" onclick="requestDelete(this)">delete</button>
    {{- end}}
  </li>
{{- end}}
</ul>
<hr>
` + listingScript + `
</body>
</html>
`))
