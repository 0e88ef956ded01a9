package loader

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/midbel/metapath/node"
)

// YAML loads documents from the local file system. Relative references are
// resolved against Dir, or against the working directory when Dir is empty.
// Kebab rewrites the keys of the loaded documents to kebab case.
type YAML struct {
	Dir   string
	Kebab bool
}

func (y YAML) Load(uri string) (node.Node, error) {
	file, err := y.resolve(uri)
	if err != nil {
		return nil, err
	}
	var options []Option
	if y.Kebab {
		options = append(options, WithKebabNames())
	}
	return ParseFile(file, options...)
}

func (y YAML) resolve(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "":
		file := filepath.FromSlash(u.Path)
		if !filepath.IsAbs(file) && y.Dir != "" {
			file = filepath.Join(y.Dir, file)
		}
		return file, nil
	case "file":
		return filepath.FromSlash(u.Path), nil
	default:
		return "", fmt.Errorf("%s: %w", u.Scheme, ErrScheme)
	}
}
