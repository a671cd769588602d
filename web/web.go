// Package web bundles the HTML templates and static assets into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	html "github.com/gofiber/template/html/v2"

	"artyra/internal/domain"
)

//go:embed templates static
var files embed.FS

// Engine returns the view engine used by the fiber app.
func Engine() *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("rupiah", domain.FormatRupiah)
	engine.AddFunc("join", strings.Join)
	engine.AddFunc("has", func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	})
	return engine
}

// Static serves /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
