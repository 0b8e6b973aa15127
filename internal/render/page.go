package render

import (
	"bytes"
	"html/template"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8" />
    <title>{{.Title}}</title>
    {{- if .FontURL}}
    <link rel="stylesheet" href="{{.FontURL}}" />
    {{- end}}
  </head>
  <body>
    <div id="{{.Options.ContainerID}}">
      {{.Shell}}
    </div>
    <script src="{{.BundlePath}}"></script>
    <script>
      StocksSnapshot.init({{.Options}});
    </script>
  </body>
</html>
`))

var shellTmpl = template.Must(template.New("shell").Parse(
	`<style>{{.CSS}}</style><div class="widget" data-symbol="{{.Symbol}}" style="{{.Style}}"><div class="spinner"></div></div>`))

// PageData drives the server-rendered widget page.
type PageData struct {
	Title      string
	FontURL    string
	BundlePath string
	Options    models.WidgetOptions
	Shell      template.HTML
}

// PrerenderShell is the placeholder the container holds until the widget
// mounts and replaces it.
func PrerenderShell(symbol, fontFamily string) (template.HTML, error) {
	var buf bytes.Buffer
	err := shellTmpl.Execute(&buf, struct {
		CSS    template.CSS
		Symbol string
		Style  template.CSS
	}{template.CSS(prerenderCSS), symbol, InlineStyle(map[string]string{"font-family": fontFamily})})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Page renders the full HTML document. Options are embedded as a JSON
// literal in the bootstrap script.
func Page(data PageData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Stocks Widget SSR"
	}
	if data.BundlePath == "" {
		data.BundlePath = "/stocks.bundle.js"
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
