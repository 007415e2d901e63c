package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
)

// FileStore keeps filters in a JSON or YAML document mapping each name to
// its query. An entry may also be an object with query and description.
// The file is re-read on every call and rewritten whole on every change.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// entry is one value of the document: a bare query string, or an object
// when a description is present.
type entry struct {
	Query       string `json:"query" yaml:"query"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (e *entry) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		e.Query = s
		return nil
	}
	type plain entry
	return json.Unmarshal(b, (*plain)(e))
}

func (e entry) MarshalJSON() ([]byte, error) {
	if e.Description == "" {
		return json.Marshal(e.Query)
	}
	type plain entry
	return json.Marshal(plain(e))
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.Query)
	}
	type plain entry
	return node.Decode((*plain)(e))
}

func (e entry) MarshalYAML() (any, error) {
	if e.Description == "" {
		return e.Query, nil
	}
	type plain entry
	return plain(e), nil
}

func (s *FileStore) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (s *FileStore) load() (map[string]entry, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]entry{}, nil
	}
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrIO, "read catalog", err)
	}
	doc := map[string]entry{}
	if len(strings.TrimSpace(string(b))) == 0 {
		return doc, nil
	}
	if s.isYAML() {
		err = yaml.Unmarshal(b, &doc)
	} else {
		err = json.Unmarshal(b, &doc)
	}
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrIO, "decode catalog "+s.path, err)
	}
	// a null document decodes to a nil map
	if doc == nil {
		doc = map[string]entry{}
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]entry) error {
	var (
		b   []byte
		err error
	)
	if s.isYAML() {
		b, err = yaml.Marshal(doc)
	} else {
		b, err = json.MarshalIndent(doc, "", "    ")
		b = append(b, '\n')
	}
	if err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "encode catalog", err)
	}

	// Write next to the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catalog-*")
	if err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write catalog", err)
	}
	defer os.Remove(tmp.Name())
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return hqerrors.Wrap(hqerrors.ErrIO, "write catalog", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return hqerrors.Wrap(hqerrors.ErrIO, "write catalog", err)
	}
	if err := tmp.Close(); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write catalog", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write catalog", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Filter, 0, len(doc))
	for name, e := range doc {
		out = append(out, Filter{Name: name, Query: e.Query, Description: e.Description})
	}
	slices.SortFunc(out, func(a, b Filter) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, name string) (Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return Filter{}, err
	}
	e, ok := doc[name]
	if !ok {
		return Filter{}, hqerrors.NotFoundError("filter " + name)
	}
	return Filter{Name: name, Query: e.Query, Description: e.Description}, nil
}

func (s *FileStore) Put(ctx context.Context, f Filter) error {
	if err := Validate(f); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[f.Name] = entry{Query: f.Query, Description: f.Description}
	return s.save(doc)
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[name]; !ok {
		return hqerrors.NotFoundError("filter " + name)
	}
	delete(doc, name)
	return s.save(doc)
}

func (s *FileStore) Close() error { return nil }
