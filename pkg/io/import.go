package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

// Format is a file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Formats lists the supported format names.
var Formats = []string{string(FormatYAML), string(FormatJSON), string(FormatTOML)}

// Namespace is the UUIDv5 namespace for generated ids.
var Namespace = uuid.MustParse("6f1e3c2a-8d4b-4e5f-9a7c-0b1d2e3f4a5b")

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported roster file %q (want .yaml, .yml, .json or .toml)", filepath.Base(path))
}

// Read decodes a snapshot from r, fills in missing ids and validates it.
// Read does not close r.
func Read(r io.Reader, format Format) (*roster.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var snap roster.Snapshot
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&snap); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &snap)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode toml")
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "decode toml: unknown field %s", keys[0])
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}

	Normalize(&snap)
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid roster")
	}
	return &snap, nil
}

// Import reads the roster file at path. The format follows the extension.
func Import(path string) (*roster.Snapshot, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "roster file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "open %s", path)
	}
	defer f.Close()

	snap, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Normalize drops nil records and assigns ids to records without one.
func Normalize(s *roster.Snapshot) {
	s.People = compact(s.People)
	s.Skills = compact(s.Skills)
	s.Targets = compact(s.Targets)
	s.Roles = compact(s.Roles)
	s.Assignments = compact(s.Assignments)

	for _, p := range s.People {
		p.ID = ensureID("person", p.ID, p.Name)
	}
	for _, sk := range s.Skills {
		sk.ID = ensureID("skill", sk.ID, sk.Name)
	}
	for _, t := range s.Targets {
		t.ID = ensureID("target", t.ID, t.Name)
	}
	for _, r := range s.Roles {
		r.ID = ensureID("role", r.ID, r.Name)
	}
}

// ID returns the id generated for a record of the given kind and name.
func ID(kind, name string) string {
	return uuid.NewSHA1(Namespace, []byte(kind+":"+strings.TrimSpace(name))).String()
}

func ensureID(kind, id, name string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return ID(kind, name)
}

func compact[T any](in []*T) []*T {
	out := in[:0]
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
