package conversion

import (
	"testing"

	"convertd/internal/pkg/errors"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name     string
		wantRoot string
		wantExt  string
	}{
		{"report.docx", "report", ".docx"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"data", "data", ""},
		{".bashrc", ".bashrc", ""},
		{"..hidden.md", "..hidden", ".md"},
		{"report.", "report", "."},
		{"dir.v2/notes", "dir.v2/notes", ""},
		{"dir/notes.TXT", "dir/notes", ".TXT"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ext := splitExt(tt.name)
			if root != tt.wantRoot || ext != tt.wantExt {
				t.Errorf("splitExt(%q) = (%q, %q), expected (%q, %q)", tt.name, root, ext, tt.wantRoot, tt.wantExt)
			}
		})
	}
}

func TestResolveSourceFormat(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		filename string
		want     string
		wantErr  bool
	}{
		{"derived from extension", "", "report.docx", "docx", false},
		{"case preserved", "", "Notes.MD", "MD", false},
		{"explicit wins", "pptx", "slide.bin", "pptx", false},
		{"explicit without extension", "markdown", "data", "markdown", false},
		{"no extension", "", "data", "", true},
		{"trailing dot", "", "report.", "", true},
		{"dotfile", "", ".bashrc", "", true},
		{"placeholder", "", PlaceholderFilename, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSourceFormat(tt.explicit, tt.filename)
			if tt.wantErr {
				if !errors.IsCode(err, errors.CodeValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if errors.GetMessage(err) != msgUnknownSourceFormat {
					t.Errorf("unexpected message: %s", errors.GetMessage(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOutputNameAndContentType(t *testing.T) {
	tests := []struct {
		filename, to string
		wantName     string
		wantType     string
	}{
		{"report.docx", "pdf", "report.pdf", "application/pdf"},
		{"archive.tar.gz", "html", "archive.tar.html", "application/html"},
		{"temp_input", "txt", "temp_input.txt", "application/txt"},
		{".bashrc", "md", ".bashrc.md", "application/md"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := OutputName(tt.filename, tt.to); got != tt.wantName {
				t.Errorf("OutputName(%q, %q) = %q, expected %q", tt.filename, tt.to, got, tt.wantName)
			}
			if got := ContentType(tt.to); got != tt.wantType {
				t.Errorf("ContentType(%q) = %q, expected %q", tt.to, got, tt.wantType)
			}
		})
	}
}
