package credential

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
)

const (
	credentialsFileName = "credentials"
	fileSourceName      = "file"
)

// FileSource resolves and stores OAuth client values in a local file of
// key=value lines keyed by configuration field, e.g. client_id=abc.
//
// Comments, blank lines and unknown keys survive a rewrite, and values keep
// the position they were first written at.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by a credentials file.
//
// If path is empty, it defaults to ~/.config/conformance-wizard/credentials.
func NewFileSource(path string) *FileSource {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		trimmedPath = defaultCredentialsFilePath()
	}

	return &FileSource{path: trimmedPath}
}

func (s *FileSource) Name() string {
	return fileSourceName
}

// Path returns the credentials file location.
func (s *FileSource) Path() string {
	if s == nil {
		return ""
	}

	return s.path
}

// Get returns the field value when present in the file.
func (s *FileSource) Get(field wizard.Field) (string, bool) {
	if s == nil {
		return "", false
	}

	doc, err := s.load()
	if err != nil {
		return "", false
	}

	return doc.get(field.Key())
}

// Store saves or updates a field value in the file. Key material spans
// several lines and is never written here.
func (s *FileSource) Store(field wizard.Field, value string) error {
	if s == nil {
		return errors.New("file source is nil")
	}

	if field.IsCertificate() || strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("store %s: %w", field.Key(), ErrNotSupported)
	}

	doc, err := s.load()
	if err != nil {
		return err
	}

	doc.set(field.Key(), strings.TrimSpace(value))

	return s.save(doc)
}

// Delete removes fields from the file. A missing file is not an error.
func (s *FileSource) Delete(fields ...wizard.Field) error {
	if s == nil {
		return errors.New("file source is nil")
	}

	if len(fields) == 0 {
		return nil
	}

	doc, err := s.load()
	if err != nil {
		return err
	}

	removed := false
	for _, field := range fields {
		if doc.remove(field.Key()) {
			removed = true
		}
	}

	if !removed {
		return nil
	}

	return s.save(doc)
}

func (s *FileSource) load() (*credentialsDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &credentialsDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file %q: %w", s.path, err)
	}

	doc, err := parseCredentials(data)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file %q: %w", s.path, err)
	}

	return doc, nil
}

// save replaces the file through a temporary sibling so a failed write
// never leaves a truncated credentials file behind.
func (s *FileSource) save(doc *credentialsDocument) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+credentialsFileName+"-*")
	if err != nil {
		return fmt.Errorf("create temporary credentials file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("set credentials file permissions: %w", err)
	}

	if _, err := tmp.Write(doc.bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials file %q: %w", s.path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write credentials file %q: %w", s.path, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace credentials file %q: %w", s.path, err)
	}

	return nil
}

// credentialLine is one line of the file. Lines without a key are kept
// verbatim.
type credentialLine struct {
	key   string
	value string
	raw   string
}

type credentialsDocument struct {
	lines []credentialLine
}

func parseCredentials(data []byte) (*credentialsDocument, error) {
	doc := &credentialsDocument{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			doc.lines = append(doc.lines, credentialLine{raw: raw})
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		key := strings.ToLower(strings.TrimSpace(name))
		if !ok || key == "" {
			doc.lines = append(doc.lines, credentialLine{raw: raw})
			continue
		}

		doc.lines = append(doc.lines, credentialLine{key: key, value: strings.TrimSpace(value)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

// get returns the last value written for key, matching how a shell would
// source the file.
func (d *credentialsDocument) get(key string) (string, bool) {
	for index := len(d.lines) - 1; index >= 0; index-- {
		if d.lines[index].key == key {
			return d.lines[index].value, true
		}
	}

	return "", false
}

func (d *credentialsDocument) set(key string, value string) {
	found := false
	kept := d.lines[:0]

	for _, line := range d.lines {
		if line.key != key {
			kept = append(kept, line)
			continue
		}

		if !found {
			line.value = value
			kept = append(kept, line)
			found = true
		}
	}

	if !found {
		kept = append(kept, credentialLine{key: key, value: value})
	}

	d.lines = kept
}

func (d *credentialsDocument) remove(key string) bool {
	removed := false
	kept := d.lines[:0]

	for _, line := range d.lines {
		if line.key == key {
			removed = true
			continue
		}

		kept = append(kept, line)
	}

	d.lines = kept

	return removed
}

func (d *credentialsDocument) bytes() []byte {
	var buf bytes.Buffer

	for _, line := range d.lines {
		if line.key == "" {
			buf.WriteString(line.raw)
		} else {
			buf.WriteString(line.key)
			buf.WriteByte('=')
			buf.WriteString(line.value)
		}

		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func defaultCredentialsFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "conformance-wizard", credentialsFileName)
	}

	return filepath.Join(homeDir, ".config", "conformance-wizard", credentialsFileName)
}
