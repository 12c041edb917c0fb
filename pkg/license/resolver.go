package license

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultURLTemplate points to the text files of spdx/license-list-data.
	// {ref} is replaced with a git ref and {id} with a license identifier.
	DefaultURLTemplate = "https://raw.githubusercontent.com/spdx/license-list-data/{ref}/text/{id}.txt"

	// DefaultRef is a default git ref of spdx/license-list-data
	DefaultRef = "master"

	textExt = ".txt"
)

type ResolverParams struct {
	// DataDir is a directory holding cached license texts
	DataDir string

	// URLTemplate is a template of license text location. DefaultURLTemplate used if empty.
	URLTemplate string

	// Ref is substituted instead of {ref} in URLTemplate. DefaultRef used if empty.
	Ref string

	// Overriders are consulted in order, first match wins
	Overriders []Overrider
}

// Resolver builds License records from identifiers.
// Any identifier is accepted, unknown ones get default values.
type Resolver struct {
	ResolverParams
}

func NewResolver(params ResolverParams) *Resolver {
	return &Resolver{ResolverParams: params}
}

// Resolve returns license information for identifier.
// It fails only if identifier is empty or cache path can't be built.
func (r *Resolver) Resolve(id string) (License, error) {
	path, err := r.Path(id)
	if err != nil {
		return License{}, err
	}

	lic := License{
		Short: id,
		Long:  id,
		URL:   r.URL(id),
		Path:  path,
	}

	for _, o := range r.Overriders {
		if overridden, ok := o.Override(lic); ok {
			overridden.Short, overridden.Path = lic.Short, lic.Path
			return overridden, nil
		}
	}

	return lic, nil
}

// URL returns a default location of license text.
func (r *Resolver) URL(id string) string {
	tmpl := r.URLTemplate
	if tmpl == "" {
		tmpl = DefaultURLTemplate
	}

	ref := r.Ref
	if ref == "" {
		ref = DefaultRef
	}

	return strings.NewReplacer("{ref}", ref, "{id}", id).Replace(tmpl)
}

// Path builds a path to the cached license text. It does not guarantee that file exists.
func (r *Resolver) Path(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}

	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", InvalidIDErr(id)
	}

	if r.DataDir == "" {
		return "", ErrNoDataDir
	}

	return filepath.Join(r.DataDir, id+textExt), nil
}
