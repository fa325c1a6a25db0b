package file

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SidecarSuffix is appended to a PDF's path to find its metadata file.
const SidecarSuffix = ".meta.toml"

// SidecarPath returns the metadata file path for a PDF.
func SidecarPath(pdfPath string) string {
	return pdfPath + SidecarSuffix
}

// LoadMetadata reads bibliographic metadata from the PDF's sidecar file.
// The boolean is false when no sidecar exists.
func LoadMetadata(pdfPath string) (domain.DocumentMetadata, bool, error) {
	data, err := os.ReadFile(SidecarPath(pdfPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DocumentMetadata{}, false, nil
		}
		return domain.DocumentMetadata{}, false, err
	}

	var meta domain.DocumentMetadata
	if err := toml.Unmarshal(data, &meta); err != nil {
		return domain.DocumentMetadata{}, false, fmt.Errorf("parse %s: %w", SidecarPath(pdfPath), err)
	}
	meta.Title = strings.TrimSpace(meta.Title)
	return meta, true, nil
}

// WriteMetadata writes a sidecar file next to the PDF.
func WriteMetadata(pdfPath string, meta domain.DocumentMetadata) error {
	data, err := toml.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(SidecarPath(pdfPath), data, 0600)
}
