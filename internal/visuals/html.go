package visuals

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"pulse-mcp/internal/performance"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const mermaidCDN = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"

// dashboardScript turns fenced mermaid blocks rendered by goldmark into
// diagrams once the library is loaded.
const dashboardScript = `
document.addEventListener("DOMContentLoaded", function () {
  var blocks = document.querySelectorAll("pre > code.language-mermaid");
  if (blocks.length === 0 || typeof mermaid === "undefined") {
    return;
  }
  blocks.forEach(function (code) {
    var container = document.createElement("div");
    container.className = "mermaid";
    container.textContent = code.textContent;
    code.parentNode.replaceWith(container);
  });
  mermaid.initialize({ startOnLoad: false, theme: "neutral" });
  mermaid.run();
});
`

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 1100px; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
th { background: #f3f3f3; }
blockquote { border-left: 4px solid #e0a800; margin: 1rem 0; padding: 0.2rem 1rem; background: #fff8e1; }
</style>
{{if .Charts}}<script src="{{.MermaidURL}}"></script>
<script>{{.Script}}</script>{{end}}
</head>
<body>
{{.Body}}
</body>
</html>
`))

var (
	minifyOnce     sync.Once
	minifiedScript string
	minifyErr      error
)

// minify compresses the dashboard script once per process.
func minify() (string, error) {
	minifyOnce.Do(func() {
		result := api.Transform(dashboardScript, api.TransformOptions{
			Loader:            api.LoaderJS,
			MinifyWhitespace:  true,
			MinifyIdentifiers: true,
			MinifySyntax:      true,
		})
		if len(result.Errors) > 0 {
			msgs := make([]string, 0, len(result.Errors))
			for _, m := range result.Errors {
				msgs = append(msgs, m.Text)
			}
			minifyErr = fmt.Errorf("minify dashboard script: %s", strings.Join(msgs, "; "))
			return
		}
		minifiedScript = strings.TrimSpace(string(result.Code))
	})
	return minifiedScript, minifyErr
}

// RenderHTML renders the report as a standalone HTML page. With charts set,
// Mermaid diagrams are drawn client-side.
func RenderHTML(r *performance.Report, charts bool) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(r, charts)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	data := struct {
		Title      string
		Charts     bool
		MermaidURL string
		Script     template.JS
		Body       template.HTML
	}{
		Title:      "Project Performance Report",
		Charts:     charts,
		MermaidURL: mermaidCDN,
		Body:       template.HTML(body.String()),
	}

	if charts {
		script, err := minify()
		if err != nil {
			return nil, err
		}
		data.Script = template.JS(script)
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}
