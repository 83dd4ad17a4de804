// Package minify provides a registry with the default minifiers.
package minify

import (
	"regexp"

	"github.com/tdewolff/jsonmin"
	"github.com/tdewolff/jsonmin/json"
)

// Default minifiers for JSON and the JSON based mimetypes
var Default *jsonmin.M

func init() {
	Default = jsonmin.New()
	Default.AddFunc("application/json", json.Minify)
	Default.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
}

// JSON string minifier using all default minifiers
func JSON(s string) (string, error) {
	return Default.String("application/json", s)
}
