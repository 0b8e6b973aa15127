package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

func TestWidgetHTML_LoadingShell(t *testing.T) {
	html, err := WidgetHTML(models.WidgetView{Loading: true}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		`<stocks-snapshot><template shadowrootmode="open">`,
		`<div class="companyName"></div>`,
		`<div class="price loading"><div class="spinner"></div><div class="error"></div></div>`,
		`<div class="change loading"></div>`,
		`<div class="sparkline"></div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestWidgetHTML_RenderedQuote(t *testing.T) {
	view := models.WidgetView{
		CompanyName:      "Microsoft <Corp>",
		Symbol:           "(MSFT)",
		SymbolClickable:  true,
		Price:            "$150.00",
		Change:           "$1.50 (1.01%)",
		Direction:        models.DirectionUp,
		Timestamp:        "Last update: 15-03-2024",
		Sparkline:        Sparkline([]float64{1, 2}, SparklineOptions{}),
		SparklineHasData: true,
	}
	style := map[string]string{"--stocks-up-color": "green", "--stocks-bg-color": "#fff"}

	html, err := WidgetHTML(view, style, []string{"https://fonts.example/inter.css"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		`style="--stocks-bg-color: #fff; --stocks-up-color: green;"`,
		`<link rel="stylesheet" href="https://fonts.example/inter.css">`,
		`Microsoft &lt;Corp&gt;`,
		`data-clickable="true"`,
		`<div class="price">$150.00<div class="error"></div></div>`,
		`<div class="change up">$1.50 (1.01%)</div>`,
		`<div class="sparkline has-data"><svg`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestWidgetHTML_ErrorSlot(t *testing.T) {
	view := models.WidgetView{Loading: true, SpinnerError: true, Error: "Error: API key is required"}

	html, err := WidgetHTML(view, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, `<div class="spinner has-error"></div><div class="error">Error: API key is required</div>`) {
		t.Fatalf("error slot not rendered: %s", html)
	}
}

func TestInlineStyle_DropsDeclarationBreakers(t *testing.T) {
	got := string(InlineStyle(map[string]string{"--stocks-bg-color": `red; background: url(x)"`}))
	if strings.Count(got, ";") != 1 || strings.Contains(got, `"`) {
		t.Fatalf("value escaped its declaration: %q", got)
	}
}

func TestPage_EmbedsOptionsAsJSON(t *testing.T) {
	shell, err := PrerenderShell("MSFT", "Inter, system-ui, sans-serif")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	page, err := Page(PageData{
		FontURL: "https://fonts.example/inter.css",
		Shell:   shell,
		Options: models.WidgetOptions{
			ContainerID: "stocks-widget",
			Symbol:      "MSFT</script>",
			APIKey:      "demo",
			Theme:       map[string]string{"font-family": "Inter, sans-serif"},
			Sparkline:   "week",
		},
	})
	if err != nil {
		t.Fatalf("page: %v", err)
	}

	for _, want := range []string{
		`<div id="stocks-widget">`,
		`<div class="spinner"></div>`,
		`<script src="/stocks.bundle.js"></script>`,
		`"containerId":"stocks-widget"`,
		`"sparkline":"week"`,
		`"apiKey":"demo"`,
		`<title>Stocks Widget SSR</title>`,
	} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("missing %q in page", want)
		}
	}
	if bytes.Contains(page, []byte("MSFT</script>")) {
		t.Fatal("symbol must not be able to close the bootstrap script")
	}
}

func TestChartPNG(t *testing.T) {
	if _, err := ChartPNG("MSFT", models.PriceSeries{1}); err == nil {
		t.Fatal("expected error for a single point")
	}

	img, err := ChartPNG("MSFT", models.PriceSeries{1, 3, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Fatal("expected PNG bytes")
	}
}
