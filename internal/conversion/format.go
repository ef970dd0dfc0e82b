package conversion

import (
	"strings"

	"convertd/internal/pkg/errors"
)

const (
	// DefaultTargetFormat is used when the caller names no target format.
	DefaultTargetFormat = "pdf"
	// PlaceholderFilename stands in for an upload that arrived without a name.
	PlaceholderFilename = "temp_input"

	msgUnknownSourceFormat = "Could not determine input format. Please specify 'from_format'."
)

// ResolveSourceFormat returns explicit when set, otherwise the filename
// extension without its dot. Neither is validated against known formats.
func ResolveSourceFormat(explicit, filename string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	_, ext := splitExt(filename)
	if len(ext) > 1 {
		return ext[1:], nil
	}
	return "", errors.ValidationField("from_format", msgUnknownSourceFormat).
		WithField("filename", filename)
}

// OutputName is filename with its extension replaced by toFormat.
func OutputName(filename, toFormat string) string {
	root, _ := splitExt(filename)
	return root + "." + toFormat
}

// ContentType is the literal "application/<toFormat>"; no MIME lookup is done.
func ContentType(toFormat string) string {
	return "application/" + toFormat
}

// splitExt splits name into root and extension, the extension starting at
// the last dot of the final path element. Leading dots of that element do
// not start an extension, so ".bashrc" has none.
func splitExt(name string) (root, ext string) {
	baseStart := strings.LastIndex(name, "/") + 1
	base := name[baseStart:]

	dot := strings.LastIndex(base, ".")
	if dot <= 0 || strings.TrimLeft(base[:dot], ".") == "" {
		return name, ""
	}

	i := baseStart + dot
	return name[:i], name[i:]
}
