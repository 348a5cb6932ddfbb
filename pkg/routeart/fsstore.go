package routeart

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
)

// FileTemplateSource implements TemplateSource by reading
// "<name>.svg" files from a single directory, the concrete collaborator
// behind §6's load_template_bytes.
type FileTemplateSource struct {
	Dir string
}

// NewFileTemplateSource returns a FileTemplateSource rooted at dir.
func NewFileTemplateSource(dir string) *FileTemplateSource {
	return &FileTemplateSource{Dir: dir}
}

// LoadTemplateBytes reads "<templateName>.svg" path data from Dir.
// templateName is sanitized to its base name to stay inside Dir.
func (s *FileTemplateSource) LoadTemplateBytes(ctx context.Context, templateName string) ([]byte, error) {
	name := filepath.Base(templateName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, ErrTemplateNotFound
	}
	path := filepath.Join(s.Dir, name+".svg")

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return b, nil
}

// FileOutputSink implements OutputSink by writing each feature collection
// to its own randomly named file under Dir, the concrete collaborator
// behind §6's save_geojson.
type FileOutputSink struct {
	Dir string
}

// NewFileOutputSink returns a FileOutputSink rooted at dir. The directory
// is not touched here; SaveGeoJSON creates it if necessary.
func NewFileOutputSink(dir string) *FileOutputSink {
	return &FileOutputSink{Dir: dir}
}

// SaveGeoJSON writes fc to a new file under Dir and returns its path.
func (s *FileOutputSink) SaveGeoJSON(ctx context.Context, fc *geojson.FeatureCollection) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", s.Dir, err)
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("marshal geojson: %w", err)
	}

	name, err := randomHexName(8)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, "route-"+name+".geojson")

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func randomHexName(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate output filename: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
