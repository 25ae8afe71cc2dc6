package diorama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

var (
	// ErrUnsupportedFormat is returned for locators that are not .glb or .gltf.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrNoGeometry is returned when a model decodes but has no triangles.
	ErrNoGeometry = errors.New("model has no triangle geometry")
)

// LoadError is the asset load failure. It records which locator failed and
// why.
type LoadError struct {
	Locator string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Locator, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadEventKind identifies a LoadEvent.
type LoadEventKind uint8

const (
	LoadProgress LoadEventKind = iota // Progress is valid
	LoadDone                          // Model is valid; terminal
	LoadFailed                        // Err is valid; terminal
)

// LoadEvent is one step of an asynchronous asset load: progress, the loaded
// model subtree, or the failure cause.
type LoadEvent struct {
	Kind     LoadEventKind
	Progress float64 // ratio in [0, 1]
	Model    *Node
	Err      error
}

// AssetLoader loads a model asynchronously. Load reports progress events
// followed by exactly one terminal event (LoadDone or LoadFailed) on events.
// It returns a non-nil error only when ctx ends before the terminal event
// could be delivered.
type AssetLoader interface {
	Load(ctx context.Context, locator string, events chan<- LoadEvent) error
}

// GLTFLoader loads binary (.glb) or JSON (.gltf) glTF 2.0 models from a
// file path or an http(s) URL.
type GLTFLoader struct {
	// Client is used for http(s) locators. Nil means http.DefaultClient.
	Client *http.Client
}

// Load implements AssetLoader.
func (l *GLTFLoader) Load(ctx context.Context, locator string, events chan<- LoadEvent) error {
	send := func(ev LoadEvent) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	lastPercent := -1
	var sendErr error
	report := func(ratio float64) {
		if sendErr != nil {
			return
		}
		pct := int(ratio * 100)
		if pct <= lastPercent {
			return
		}
		lastPercent = pct
		sendErr = send(LoadEvent{Kind: LoadProgress, Progress: ratio})
	}

	model, err := l.load(ctx, locator, report)
	if sendErr != nil {
		return sendErr
	}
	if err != nil {
		return send(LoadEvent{Kind: LoadFailed, Err: &LoadError{Locator: locator, Err: err}})
	}
	report(1)
	if sendErr != nil {
		return sendErr
	}
	return send(LoadEvent{Kind: LoadDone, Model: model})
}

// load fetches and decodes the model, reporting byte progress.
func (l *GLTFLoader) load(ctx context.Context, locator string, report func(float64)) (*Node, error) {
	ext, remote, err := classifyLocator(locator)
	if err != nil {
		return nil, err
	}

	rc, size, fsys, err := l.open(ctx, locator, remote)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	pr := &progressReader{r: rc, total: size, report: report}
	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := new(gltf.Document)
	var dec *gltf.Decoder
	if ext == ".gltf" && fsys != nil {
		dec = gltf.NewDecoderFS(bytes.NewReader(data), fsys)
	} else {
		dec = gltf.NewDecoder(bytes.NewReader(data))
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	model, err := buildModel(doc, modelName(locator))
	if err != nil {
		return nil, err
	}
	if model.TriangleCount() == 0 {
		return nil, ErrNoGeometry
	}
	return model, nil
}

// classifyLocator returns the lower-case file extension and whether the
// locator is an http(s) URL.
func classifyLocator(locator string) (ext string, remote bool, err error) {
	p := locator
	if u, perr := url.Parse(locator); perr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		remote = true
		p = u.Path
	}
	ext = strings.ToLower(path.Ext(p))
	if ext != ".glb" && ext != ".gltf" {
		return "", remote, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, remote, nil
}

// open returns the asset stream, its size (-1 if unknown) and, for local
// files, the directory used to resolve external buffers.
func (l *GLTFLoader) open(ctx context.Context, locator string, remote bool) (io.ReadCloser, int64, fs.FS, error) {
	if !remote {
		f, err := os.Open(locator)
		if err != nil {
			return nil, 0, nil, err
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, nil, err
		}
		return f, st.Size(), os.DirFS(filepath.Dir(locator)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}
	return resp.Body, resp.ContentLength, nil, nil
}

// modelName derives a node name from the locator's base name.
func modelName(locator string) string {
	base := path.Base(filepath.ToSlash(locator))
	return strings.TrimSuffix(base, path.Ext(base))
}

// progressReader reports the fraction of total bytes read so far.
// Unknown totals (<= 0) report nothing until the caller's final report.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 && n > 0 {
		p.report(min(float64(p.read)/float64(p.total), 1))
	}
	return n, err
}
