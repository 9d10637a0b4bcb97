// Package artifact persists the model bundle as three files in one
// directory: the gob-encoded classifier, the metrics and the encoder set.
package artifact

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/domain"
)

const (
	ClassifierFile = "classifier.gob"
	MetricsFile    = "metrics.json"
	EncodersFile   = "encoders.json"
)

var files = []string{ClassifierFile, MetricsFile, EncodersFile}

var rename = os.Rename

// Store reads and writes the bundle under Dir. Concrete classifier types
// must be registered with gob by their package.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Save writes the bundle only when none of its files exist yet. All files
// are staged before any is renamed into place.
func (s *Store) Save(ctx context.Context, b domain.ModelBundle) (bool, error) {
	if b.Classifier == nil || b.Encoders == nil {
		return false, fmt.Errorf("save bundle: classifier and encoders are required")
	}
	existing, err := s.existing()
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		log.Info().Str("dir", s.Dir).Strs("existing", existing).Msg("artifacts already exist, skipping write")
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return false, fmt.Errorf("create artifact dir: %w", err)
	}

	var clf bytes.Buffer
	if err := gob.NewEncoder(&clf).Encode(&b.Classifier); err != nil {
		return false, fmt.Errorf("encode classifier: %w", err)
	}
	metrics, err := json.MarshalIndent(b.Metrics, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode metrics: %w", err)
	}
	encoders, err := json.MarshalIndent(b.Encoders, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode encoders: %w", err)
	}

	payloads := map[string][]byte{
		ClassifierFile: clf.Bytes(),
		MetricsFile:    metrics,
		EncodersFile:   encoders,
	}
	staged := make(map[string]string, len(files))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for _, name := range files {
		tmp, err := stage(s.Dir, name, payloads[name])
		if err != nil {
			return false, err
		}
		staged[name] = tmp
	}
	// a failed rename removes the files this call already published
	var published []string
	for _, name := range files {
		dst := filepath.Join(s.Dir, name)
		if err := rename(staged[name], dst); err != nil {
			for _, p := range published {
				if rmErr := os.Remove(p); rmErr != nil {
					log.Error().Err(rmErr).Str("file", p).Msg("roll back published artifact")
				}
			}
			return false, fmt.Errorf("publish %s: %w", name, err)
		}
		delete(staged, name)
		published = append(published, dst)
	}
	log.Info().Str("dir", s.Dir).Msg("artifacts written")
	return true, nil
}

func (s *Store) Load(ctx context.Context) (domain.ModelBundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModelBundle{}, err
	}
	raw := make(map[string][]byte, len(files))
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(s.Dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ModelBundle{}, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
		}
		if err != nil {
			return domain.ModelBundle{}, fmt.Errorf("read %s: %w", name, err)
		}
		raw[name] = b
	}

	var out domain.ModelBundle
	if err := gob.NewDecoder(bytes.NewReader(raw[ClassifierFile])).Decode(&out.Classifier); err != nil {
		return domain.ModelBundle{}, fmt.Errorf("decode classifier: %w", err)
	}
	if err := json.Unmarshal(raw[MetricsFile], &out.Metrics); err != nil {
		return domain.ModelBundle{}, fmt.Errorf("decode metrics: %w", err)
	}
	out.Encoders = &domain.EncoderSet{}
	if err := json.Unmarshal(raw[EncodersFile], out.Encoders); err != nil {
		return domain.ModelBundle{}, fmt.Errorf("decode encoders: %w", err)
	}
	return out, nil
}

func (s *Store) existing() ([]string, error) {
	var found []string
	for _, name := range files {
		_, err := os.Stat(filepath.Join(s.Dir, name))
		switch {
		case err == nil:
			found = append(found, name)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
	}
	return found, nil
}

func stage(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return f.Name(), nil
}
