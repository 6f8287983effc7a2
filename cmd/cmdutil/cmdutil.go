// Package cmdutil holds argument and output helpers shared by the commands.
package cmdutil

import (
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/transientskp/tkpcat/internal/errors"
)

// ParseID parses a positive database id given as argument name.
func ParseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf("%s must be a positive integer, got %q", name, arg).
			Component("cli").
			Category(errors.CategoryValidation).
			Build()
	}
	return id, nil
}

// ParseIDs parses every element of args with ParseID.
func ParseIDs(name string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := ParseID(name, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ReadYAML decodes the YAML file at path into out. A path of "-" reads
// standard input. Unknown fields are an error.
func ReadYAML(path string, stdin io.Reader, out any) error {
	r, err := Open(path, stdin)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.New(err).
			Component("cli").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
	return nil
}

// Open returns the reader for path, standard input for "-".
func Open(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("cli").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return f, nil
}

// PrintYAML writes v to w as YAML.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
