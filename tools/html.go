package tools

import (
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/Comcast/autostate/autocontrol"
	"github.com/Comcast/autostate/core"

	md "github.com/russross/blackfriday/v2"
	"gopkg.in/yaml.v2"
)

func yamlOf(x interface{}) string {
	bs, err := yaml.Marshal(x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// RenderDefinitionHTML writes an HTML fragment documenting the
// Definition.  Docs are Markdown.
func RenderDefinitionHTML(d *core.Definition, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="defDoc doc">%s</div>`, md.Run([]byte(d.Doc)))

	if len(d.AutoControlled) > 0 {
		f(`<div class="autoControlled"><h2>Auto-controlled</h2><ul>`)
		for _, p := range d.AutoControlled {
			f(`<li><code>%s</code> (default prop <code>%s</code>)</li>`,
				html.EscapeString(p), html.EscapeString(autocontrol.DefaultPropName(p)))
		}
		f(`</ul></div>`)
	}

	if len(d.InitialState) > 0 {
		f(`<div class="initialState"><h2>Initial state</h2><pre>%s</pre></div>`,
			html.EscapeString(yamlOf(map[string]interface{}(d.InitialState))))
	}

	if len(d.DefaultProps) > 0 {
		f(`<div class="defaultProps"><h2>Default props</h2><pre>%s</pre></div>`,
			html.EscapeString(yamlOf(map[string]interface{}(d.DefaultProps))))
	}

	if len(d.Actions) > 0 {
		names := make([]string, 0, len(d.Actions))
		for name := range d.Actions {
			names = append(names, name)
		}
		sort.Strings(names)

		f(`<div class="actions"><h2>Actions</h2><table>`)
		for _, name := range names {
			src := d.Actions[name]
			f(`<tr class="action"><td><span id="%s" class="actionName">%s</span></td><td>`,
				html.EscapeString(name), html.EscapeString(name))
			if src != nil {
				if src.Doc != "" {
					f(`<div class="actionDoc doc">%s</div>`, md.Run([]byte(src.Doc)))
				}
				f(`<div class="interpreter">%s</div>`, html.EscapeString(src.Interpreter))
				f(`<div class="code"><pre>%s</pre></div>`, html.EscapeString(sourceText(src.Source)))
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	if len(d.Middleware) > 0 {
		f(`<div class="middleware"><h2>Middleware</h2><ol>`)
		for _, src := range d.Middleware {
			if src == nil {
				continue
			}
			f(`<li>`)
			if src.Doc != "" {
				f(`<div class="middlewareDoc doc">%s</div>`, md.Run([]byte(src.Doc)))
			}
			f(`<div class="code"><pre>%s</pre></div>`, html.EscapeString(sourceText(src.Source)))
			f(`</li>`)
		}
		f(`</ol></div>`)
	}

	return nil
}

func sourceText(src interface{}) string {
	if s, is := src.(string); is {
		return s
	}
	return yamlOf(src)
}

// RenderDefinitionPage writes a complete HTML page.
func RenderDefinitionPage(d *core.Definition, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/definition.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<html>
  <head>
  <meta charset="utf-8">
  <title>%s</title>
`, html.EscapeString(d.Name))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(d.Name))

	if err := RenderDefinitionHTML(d, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `  </body>
</html>
`)

	return nil
}

// ReadAndRenderDefinitionPage reads a Definition from the file and
// renders it with RenderDefinitionPage.
func ReadAndRenderDefinitionPage(filename string, cssFiles []string, out io.Writer) error {
	d, err := core.ReadDefinition(filename)
	if err != nil {
		return err
	}
	return RenderDefinitionPage(d, out, cssFiles)
}
