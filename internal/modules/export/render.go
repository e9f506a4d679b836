package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

const reportStyle = `
body { margin: 0; padding: 24px; font: 16px/1.8 -apple-system, BlinkMacSystemFont, "Segoe UI", "PingFang SC", "Microsoft YaHei", sans-serif; color: #222; background: #fff; }
article { max-width: 860px; margin: 0 auto; }
h1 { font-size: 28px; border-bottom: 2px solid #eee; padding-bottom: 12px; }
h2 { font-size: 22px; margin-top: 2em; border-bottom: 1px solid #eee; padding-bottom: 8px; }
h3 { font-size: 17px; margin-top: 1.5em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ddd; padding: 6px 14px; text-align: left; }
th { background: #fafafa; }
blockquote { margin: 1em 0; padding: 8px 16px; border-left: 4px solid #ddd; background: #fafafa; color: #444; }
hr { border: none; border-top: 1px dashed #ccc; margin: 2.5em 0; }
ol li { margin: 0.5em 0; white-space: pre-line; }
`

// RenderHTMLDocument converts the markdown report into a standalone HTML
// page with inlined styles, so the file opens anywhere without assets.
func RenderHTMLDocument(title, markdown string) (string, error) {
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &out); err != nil {
		return "", &ExportError{Reason: "渲染 HTML", Err: err}
	}

	escapedTitle := template.HTMLEscapeString(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(out.Len() + 2048)
	b.WriteString("<!DOCTYPE html>\n<html lang=\"zh-cn\">\n")
	b.WriteString("  <head>\n")
	b.WriteString("    <meta charset=\"UTF-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	b.WriteString("    <style>")
	b.WriteString(reportStyle)
	b.WriteString("</style>\n")
	b.WriteString("    <title>")
	b.WriteString(escapedTitle)
	b.WriteString("</title>\n")
	b.WriteString("  </head>\n")
	b.WriteString("  <body>\n    <article>\n")
	b.WriteString(out.String())
	b.WriteString("    </article>\n  </body>\n</html>")
	return b.String(), nil
}
