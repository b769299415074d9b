package asset

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Client used for fetching remote scene files.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Resource is a readable scene file. It is either a local file, a file
// served over http/https or an in-memory stream.
type Resource struct {
	io.ReadCloser
	location *url.URL
}

// Path returns the location the resource was opened from.
func (r *Resource) Path() string {
	return r.location.String()
}

// Name returns the last element of the resource location.
func (r *Resource) Name() string {
	return path.Base(r.location.Path)
}

// Remote returns true if the resource is fetched over http/https.
func (r *Resource) Remote() bool {
	return r.location.Scheme != ""
}

// NewResource opens the scene file at location. Locations without a scheme
// are resolved against the directory of parent when one is given; this is
// how files pulled in by a "call" statement are found next to the file
// that references them. The caller must close the returned resource.
func NewResource(location string, parent *Resource) (*Resource, error) {
	target, err := resolve(location, parent)
	if err != nil {
		return nil, err
	}

	stream, err := open(target)
	if err != nil {
		return nil, err
	}
	return &Resource{ReadCloser: stream, location: target}, nil
}

// NewResourceFromStream wraps source into a resource named name.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	location, err := url.Parse(name)
	if err != nil {
		location = &url.URL{Path: name}
	}
	return &Resource{ReadCloser: io.NopCloser(source), location: location}
}

func resolve(location string, parent *Resource) (*url.URL, error) {
	// Scene files authored on windows may use backslashes as separators.
	ref, err := url.Parse(strings.ReplaceAll(location, `\`, `/`))
	if err != nil {
		return nil, errors.Wrap(err, "resource: invalid path")
	}
	if ref.Scheme != "" || parent == nil {
		return ref, nil
	}

	if parent.Remote() {
		return parent.location.ResolveReference(&url.URL{Path: ref.Path}), nil
	}
	if filepath.IsAbs(ref.Path) {
		return ref, nil
	}

	parentPath, err := filepath.Abs(parent.location.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "resource: could not detect abs path for %s", parent.Path())
	}
	return &url.URL{Path: filepath.Join(filepath.Dir(parentPath), ref.Path)}, nil
}

func open(target *url.URL) (io.ReadCloser, error) {
	switch target.Scheme {
	case "":
		f, err := os.Open(filepath.Clean(target.Path))
		if err != nil {
			return nil, errors.Wrap(err, "resource")
		}
		return f, nil
	case "http", "https":
		return fetch(target.String())
	}
	return nil, errors.Errorf("resource: unsupported scheme '%s'", target.Scheme)
}

func fetch(location string) (io.ReadCloser, error) {
	resp, err := httpClient.Get(location)
	if err != nil {
		return nil, errors.Wrapf(err, "resource: could not fetch '%s'", location)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, errors.Errorf("resource: could not fetch '%s': status %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}
