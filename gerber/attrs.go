package gerber

import "github.com/gerbonara-go/gerbonara/cam"

// AttrScope is one of the three attribute dictionary scopes (spec.md §4.5
// TF/TA/TO/TD handling).
type AttrScope int

const (
	FileScope AttrScope = iota
	ApertureScope
	ObjectScope
)

// AttrDict is the three-scope attribute dictionary stack. File attributes
// persist for the whole parse; aperture/object attributes are reset by TD
// (with no name) and are meant to be captured onto the next-defined
// aperture / next-emitted object respectively.
type AttrDict struct {
	file      map[string][]string
	aperture  map[string][]string
	object    map[string][]string
}

// NewAttrDict returns an empty attribute dictionary.
func NewAttrDict() *AttrDict {
	return &AttrDict{
		file:     make(map[string][]string),
		aperture: make(map[string][]string),
		object:   make(map[string][]string),
	}
}

func (d *AttrDict) scope(s AttrScope) map[string][]string {
	switch s {
	case FileScope:
		return d.file
	case ApertureScope:
		return d.aperture
	default:
		return d.object
	}
}

// Set stores name=values in the given scope (TF/TA/TO).
func (d *AttrDict) Set(scope AttrScope, name string, values []string) {
	d.scope(scope)[name] = values
}

// Clear implements TD: with no name, clears aperture+object scope; with a
// name, deletes that specific attribute from whichever scope holds it.
// Deleting a file-scope attribute is an error (spec.md §4.5).
func (d *AttrDict) Clear(name string, sink cam.Sink) error {
	if name == "" {
		d.aperture = make(map[string][]string)
		d.object = make(map[string][]string)
		return nil
	}
	if _, ok := d.file[name]; ok {
		return &cam.ParseError{Kind: cam.SyntaxError, Reason: "TD cannot delete file-scope attribute " + name}
	}
	delete(d.aperture, name)
	delete(d.object, name)
	return nil
}

// Snapshot returns a copy of the named scope's current contents, for
// attaching to an about-to-be-created aperture or object.
func (d *AttrDict) Snapshot(scope AttrScope) map[string][]string {
	src := d.scope(scope)
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// File returns the file-scope attribute dictionary.
func (d *AttrDict) File() map[string][]string {
	return d.file
}
