package render

import "html/template"

var modernTemplate = template.Must(template.New("modern").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  :root { color-scheme: light dark; }
  body { font-family: system-ui, -apple-system, sans-serif; margin: 0; background: #f5f6f8; color: #1d2330; }
  main { max-width: 960px; margin: 0 auto; padding: 24px; }
  h1 { font-size: 1.3rem; word-break: break-all; }
  .card { background: #fff; border-radius: 10px; box-shadow: 0 1px 3px rgba(0,0,0,.08); padding: 16px 20px; margin-bottom: 20px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { text-align: left; padding: 8px 6px; border-bottom: 1px solid #eceef2; }
  td.size, td.date { white-space: nowrap; color: #5b6475; font-size: .9rem; }
  a { color: #2456d6; text-decoration: none; }
  a:hover { text-decoration: underline; }
  button { border: 0; border-radius: 6px; padding: 4px 10px; background: #e5484d; color: #fff; cursor: pointer; }
  button:disabled { opacity: .5; cursor: default; }
  #status { min-height: 1.2em; color: #5b6475; }
  @media (prefers-color-scheme: dark) {
    body { background: #111318; color: #e6e8ee; }
    .card { background: #1b1e26; box-shadow: none; }
    th, td { border-color: #2a2e38; }
    a { color: #7aa2ff; }
  }
</style>
</head>
<body>
<main>
  <h1>{{.Title}}</h1>
  <div class="card">
    <form id="upload-form" enctype="multipart/form-data" method="post" action="/">
      <input name="file_upload" type="file" multiple>
      <input type="submit" value="Upload">
    </form>
    <progress id="upload-progress" max="100" value="0" hidden></progress>
    <p id="status"></p>
  </div>
  <div class="card">
    <table>
      <thead><tr><th>Name</th><th>Size</th><th>Modified</th><th></th></tr></thead>
      <tbody>
      {{- if .Parent}}
        <tr><td><a href="{{.Parent}}">../</a></td><td></td><td></td><td></td></tr>
      {{- end}}
      {{- range .Rows}}
        <tr>
          <td><a href="{{.Href}}">{{.Name}}</a></td>
          <td class="size">{{.Size}}</td>
          <td class="date">{{.Modified}}</td>
          <td>{{if .Deletable}}<button type="button" data-file="{{.Name}}" onclick="requestDelete(this)">Delete</button>{{end}}</td>
        </tr>
      {{- else}}
        <tr><td colspan="4">This folder is empty.</td></tr>
      {{- end}}
      </tbody>
    </table>
  </div>
</main>
` + listingScript + `
</body>
</html>
`))
