package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"telemetry-analytics-service/internal/metrics/core/domain"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const pageTitle = "HelixScreen Telemetry Report"

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    max-width: 960px; margin: 2rem auto; padding: 0 1rem;
    background: #1a1a2e; color: #e0e0e0;
  }
  h1 { color: #00d4ff; border-bottom: 2px solid #00d4ff; padding-bottom: 0.5rem; }
  h2 { color: #00d4ff; margin-top: 2rem; }
  h3 { color: #9ad; margin-bottom: 0.3rem; }
  table { border-collapse: collapse; margin: 0.5rem 0; }
  th, td { border: 1px solid #333; padding: 0.25rem 0.75rem; text-align: left; }
  th { background: #16213e; }
  pre {
    background: #16213e; padding: 1rem; border-radius: 8px;
    overflow-x: auto; font-size: 0.85rem; line-height: 1.4;
    white-space: pre-wrap;
  }
  .meta { color: #888; font-size: 0.9rem; }
  .tabs { display: flex; gap: 0.5rem; margin: 1rem 0; }
  .tab {
    padding: 0.5rem 1rem; cursor: pointer; border-radius: 4px;
    background: #16213e; border: 1px solid #333;
  }
  .tab.active { background: #00d4ff; color: #1a1a2e; font-weight: bold; }
  .tab-content { display: none; }
  .tab-content.active { display: block; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated: {{.GeneratedAt}}</p>

<div class="tabs">
  <div class="tab active" onclick="showTab(event, 'summary')">Summary</div>
  <div class="tab" onclick="showTab(event, 'text')">Terminal</div>
  <div class="tab" onclick="showTab(event, 'json')">Raw JSON</div>
</div>

<div id="tab-summary" class="tab-content active">
{{.Summary}}
</div>

<div id="tab-text" class="tab-content">
<pre>{{.Text}}</pre>
</div>

<div id="tab-json" class="tab-content">
<pre>{{.JSON}}</pre>
</div>

<script>
function showTab(ev, name) {
  document.querySelectorAll('.tab-content').forEach(el => el.classList.remove('active'));
  document.querySelectorAll('.tab').forEach(el => el.classList.remove('active'));
  document.getElementById('tab-' + name).classList.add('active');
  ev.target.classList.add('active');
}
</script>
</body>
</html>
`))

type page struct {
	Title       string
	GeneratedAt string
	Summary     template.HTML
	Text        string
	JSON        string
}

// HTML renders a self-contained report page: a table summary built
// from markdown, the terminal text and the raw JSON.
type HTML struct {
	md   goldmark.Markdown
	text *Text
}

func NewHTML() *HTML {
	return &HTML{
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		text: NewText(false),
	}
}

func (h *HTML) Render(r *domain.Report) ([]byte, error) {
	raw, err := r.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	var summary bytes.Buffer
	if err := h.md.Convert([]byte(Markdown(r)), &summary); err != nil {
		return nil, fmt.Errorf("convert summary: %w", err)
	}

	var out bytes.Buffer
	err = pageTemplate.Execute(&out, page{
		Title:       pageTitle,
		GeneratedAt: r.GeneratedAt.UTC().Format(generatedAtLayout),
		Summary:     template.HTML(summary.String()),
		Text:        h.text.Render(r),
		JSON:        string(raw),
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Markdown renders the report as GFM: one heading per section, a table
// of scalar metrics, and one table per nested mapping.
func Markdown(r *domain.Report) string {
	var b strings.Builder

	b.WriteString("## EVENT COUNTS\n\n| Type | Events |\n|---|---:|\n")
	r.EventCounts.Each(func(k string, v int) {
		fmt.Fprintf(&b, "| %s | %d |\n", mdEscape(k), v)
	})

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", mdEscape(s.Title))
		if note, ok := domain.NoteOf(s.Metrics); ok {
			fmt.Fprintf(&b, "_%s_\n", mdEscape(note))
			continue
		}

		var nested []string
		wroteHeader := false
		for _, k := range s.Metrics.Keys() {
			v := get(s.Metrics, k)
			if _, ok := entries(v); ok {
				nested = append(nested, k)
				continue
			}
			if !wroteHeader {
				b.WriteString("| Metric | Value |\n|---|---:|\n")
				wroteHeader = true
			}
			fmt.Fprintf(&b, "| %s | %s |\n", mdEscape(k), mdEscape(pyStr(v)))
		}

		for _, k := range nested {
			e, _ := entries(get(s.Metrics, k))
			fmt.Fprintf(&b, "\n### %s\n\n", mdEscape(k))
			if len(e.Keys()) == 0 {
				b.WriteString("_none_\n")
				continue
			}
			b.WriteString("| Value | Count |\n|---|---:|\n")
			for _, label := range e.Keys() {
				v, _ := e.Entry(label)
				fmt.Fprintf(&b, "| %s | %s |\n", mdEscape(label), mdEscape(cell(v)))
			}
		}
	}
	return b.String()
}

func cell(v any) string {
	_, isGroup := v.(domain.GroupRate)
	if _, isMap := entries(v); isGroup || isMap {
		rate, total := groupRate(v)
		return fmt.Sprintf("%s%% of %s", pyStr(rate), pyStr(total))
	}
	return pyStr(v)
}

// mdEscape backslash-escapes ASCII punctuation so labels from devices
// render as literal text.
func mdEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		if r < 128 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
