package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kathitsondhi/portfolio/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// initials returns the upper-cased first letter of each word in name.
func initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

var funcs = template.FuncMap{
	"markdown": content.RenderMarkdown,
	"revealClass": func(revealed map[string]bool, section string) string {
		if revealed[section] {
			return "reveal revealed"
		}
		return "reveal"
	},
	"threshold": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	"initials": initials,
	"datetime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04")
	},
	"year": func() int {
		return time.Now().Year()
	},
}

// parseTemplates parses every page and fragment template.
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
