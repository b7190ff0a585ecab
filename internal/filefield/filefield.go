// Package filefield describes and loads the key material upload fields of the
// configuration step.
package filefield

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
)

// TimestampLayout formats the last modified time in descriptions.
const TimestampLayout = "Mon Jan 02 2006 15:04:05 MST"

// ErrInvalidExtension is returned when a selected file has the wrong type.
var ErrInvalidExtension = errors.New("invalid file type")

// Store is the part of the wizard store a file field reads and writes.
type Store interface {
	State() wizard.State
	SetField(field wizard.Field, value string) (bool, error)
	SetConfigurationErrors(errs []error) error
}

// File describes a file picked by the user.
type File struct {
	Name         string
	Size         int64
	LastModified *time.Time
}

// Field is one key material upload field.
type Field struct {
	field     wizard.Field
	store     Store
	file      *File
	validFile bool
	data      string
}

// New creates the upload field for a certificate configuration field.
func New(field wizard.Field, store Store) (*Field, error) {
	if !field.IsCertificate() {
		return nil, fmt.Errorf("field %q does not hold key material", field.Key())
	}

	if store == nil {
		return nil, errors.New("store is required")
	}

	return &Field{field: field, store: store}, nil
}

// ConfigField returns the configuration field backing the upload field.
func (f *Field) ConfigField() wizard.Field {
	return f.field
}

// Stored returns the value currently persisted in the store.
func (f *Field) Stored() string {
	return f.field.Value(f.store.State().Configuration)
}

// File returns the selected file, if any.
func (f *Field) File() *File {
	return f.file
}

// Valid reports whether the selected file passed the type check.
func (f *Field) Valid() bool {
	return f.validFile
}

// SetSelection replaces the selected file and the content read from it
// without touching the store.
func (f *Field) SetSelection(file *File, data string, valid bool) {
	f.file = file
	f.data = data
	f.validFile = valid
}

// Description summarises the field content.
//
// The selected file is described when it is valid, has content, and that
// content matches the stored value or nothing is stored yet. Otherwise the stored value
// is described; it has no modification time. A selected file whose content
// differs from a stored value does not win over it.
func (f *Field) Description() string {
	stored := f.Stored()

	if f.file != nil && f.validFile && f.data != "" && (f.data == stored || stored == "") {
		description := fmt.Sprintf("Size: %d bytes", f.file.Size)
		if f.file.LastModified != nil {
			description += ", Last modified: " + f.file.LastModified.Format(TimestampLayout)
		}

		return description
	}

	if stored != "" {
		return fmt.Sprintf("Size: %d bytes", len(stored))
	}

	return ""
}

// Select reads the file at path into the field.
//
// A file with the wrong extension is kept as an invalid selection and the
// problem is reported through the store's configuration errors. A valid file
// is stored as the field value.
func (f *Field) Select(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return f.reject(fmt.Errorf("read %s: %w", f.field.Label(), err))
	}

	modified := info.ModTime()
	file := &File{
		Name:         filepath.Base(path),
		Size:         info.Size(),
		LastModified: &modified,
	}

	expected := f.field.Extension()
	if !strings.EqualFold(filepath.Ext(file.Name), expected) {
		f.SetSelection(file, "", false)

		return f.reject(fmt.Errorf("%w: %s, expected %s", ErrInvalidExtension, file.Name, expected))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		f.SetSelection(file, "", false)

		return f.reject(fmt.Errorf("read %s: %w", f.field.Label(), err))
	}

	f.SetSelection(file, string(data), true)

	if _, err := f.store.SetField(f.field, string(data)); err != nil {
		return fmt.Errorf("store %s: %w", f.field.Label(), err)
	}

	return nil
}

func (f *Field) reject(err error) error {
	if storeErr := f.store.SetConfigurationErrors([]error{err}); storeErr != nil {
		return errors.Join(err, storeErr)
	}

	return err
}
