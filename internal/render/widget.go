package render

import (
	"bytes"
	"html/template"
	"sort"
	"strings"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

var widgetTmpl = template.Must(template.New("widget").Parse(
	`<stocks-snapshot{{with .Style}} style="{{.}}"{{end}}><template shadowrootmode="open">` +
		`{{range .Fonts}}<link rel="stylesheet" href="{{.}}">{{end}}` +
		`<style>{{.CSS}}</style>` +
		`<div class="widget">` +
		`<div class="widgetLeft">` +
		`<div class="widgetCompany">` +
		`<div class="companyName">{{.View.CompanyName}}</div>` +
		`<div class="symbol" data-clickable="{{.View.SymbolClickable}}">{{.View.Symbol}}</div>` +
		`</div>` +
		`<div class="widgetPrice">` +
		`<div class="price{{if .View.Loading}} loading{{end}}">` +
		`{{if .View.Loading}}<div class="spinner{{if .View.SpinnerError}} has-error{{end}}"></div>{{else}}{{.View.Price}}{{end}}` +
		`<div class="error">{{.View.Error}}</div>` +
		`</div>` +
		`<div class="change{{if .View.Loading}} loading{{end}}{{with .View.Direction}} {{.}}{{end}}">{{.View.Change}}</div>` +
		`</div>` +
		`<div class="timestamp">{{.View.Timestamp}}</div>` +
		`</div>` +
		`<div class="sparkline{{if .View.SparklineHasData}} has-data{{end}}">{{.Sparkline}}</div>` +
		`</div>` +
		`</template></stocks-snapshot>`))

type widgetData struct {
	Style     template.CSS
	Fonts     []string
	CSS       template.CSS
	View      models.WidgetView
	Sparkline template.HTML
}

// WidgetHTML renders a widget surface as declarative shadow DOM, so the host
// page's styles cannot reach inside except through the style variables.
func WidgetHTML(view models.WidgetView, style map[string]string, fonts []string) (string, error) {
	var buf bytes.Buffer
	err := widgetTmpl.Execute(&buf, widgetData{
		Style: InlineStyle(style),
		Fonts: fonts,
		CSS:   template.CSS(widgetCSS),
		View:  view,
		// Sparkline markup is produced by Sparkline, never by user input.
		Sparkline: template.HTML(view.Sparkline),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var styleValueCleaner = strings.NewReplacer(";", "", `"`, "", "<", "", ">", "", "{", "", "}", "")

// InlineStyle serializes custom properties in key order. Declarations are
// confined to their value: separators and markup characters are dropped.
func InlineStyle(props map[string]string) template.CSS {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(styleValueCleaner.Replace(k))
		b.WriteString(": ")
		b.WriteString(styleValueCleaner.Replace(props[k]))
		b.WriteString(";")
	}
	return template.CSS(b.String())
}
