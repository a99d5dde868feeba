package modelpkg

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/your-org/wwtp-flow-predictor/internal/regression"
)

// Artifact layout: magic | xxhash64(payload) big endian | payload,
// where payload is a zstd-compressed gob of artifactRecord.
var magic = [8]byte{'W', 'W', 'T', 'P', 'M', 'D', 'L', '1'}

const headerSize = len(magic) + 8

var (
	// ErrMissingArtifact is returned by Load when the artifact file does not exist.
	ErrMissingArtifact = errors.New("model artifact not found")
	// ErrCorruptArtifact is returned when an artifact fails format or checksum validation.
	ErrCorruptArtifact = errors.New("corrupt model artifact")
)

type artifactRecord struct {
	Version      string
	Family       string
	Features     []string
	Target       string
	HasIntercept bool
	Intercept    float64
	Coefficients []float64
	TrainedAt    time.Time
	Linear       *regression.LinearModel
	Forest       *regression.ForestModel
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// Marshal encodes the package into artifact bytes.
func Marshal(p *Package) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rec := artifactRecord{
		Version:      p.Version,
		Family:       string(p.Family()),
		Features:     p.Features,
		Target:       p.Target,
		Coefficients: p.Coefficients,
		TrainedAt:    p.TrainedAt,
	}
	if p.Intercept != nil {
		rec.HasIntercept = true
		rec.Intercept = *p.Intercept
	}
	switch m := p.Model.(type) {
	case *regression.LinearModel:
		rec.Linear = m
	case *regression.ForestModel:
		rec.Forest = m
	default:
		return nil, fmt.Errorf("unsupported model type %T", p.Model)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(&rec); err != nil {
		return nil, fmt.Errorf("failed to encode model package: %w", err)
	}

	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	payload := encoder.EncodeAll(raw.Bytes(), nil)
	zstdEncoderPool.Put(encoder)

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, magic[:])
	binary.BigEndian.PutUint64(out[len(magic):], xxhash.Sum64(payload))
	return append(out, payload...), nil
}

// Unmarshal decodes artifact bytes and validates the result.
func Unmarshal(data []byte) (*Package, error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptArtifact)
	}
	payload := data[headerSize:]
	if sum := binary.BigEndian.Uint64(data[len(magic):headerSize]); sum != xxhash.Sum64(payload) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptArtifact)
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	raw, err := decoder.DecodeAll(payload, nil)
	zstdDecoderPool.Put(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}

	var rec artifactRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}

	p := &Package{
		Version:      rec.Version,
		Features:     rec.Features,
		Target:       rec.Target,
		Coefficients: rec.Coefficients,
		TrainedAt:    rec.TrainedAt,
	}
	if rec.HasIntercept {
		intercept := rec.Intercept
		p.Intercept = &intercept
	}
	switch regression.Family(rec.Family) {
	case regression.Linear:
		if rec.Linear == nil {
			return nil, fmt.Errorf("%w: linear artifact without model state", ErrCorruptArtifact)
		}
		p.Model = rec.Linear
	case regression.Forest:
		if rec.Forest == nil {
			return nil, fmt.Errorf("%w: forest artifact without model state", ErrCorruptArtifact)
		}
		p.Model = rec.Forest
	default:
		return nil, fmt.Errorf("%w: unknown model family %q", ErrCorruptArtifact, rec.Family)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	return p, nil
}

// Save writes the artifact to path. The file is written to a temporary name
// in the same directory and renamed, so readers never see a partial artifact.
func Save(path string, p *Package) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Load reads and validates the artifact at path.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, path)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
