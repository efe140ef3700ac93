package output

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
)

// Radiance dumps are a zstd stream holding a fixed header followed by
// width*height little-endian float64 RGB triples in row-major order.
var radianceMagic = [4]byte{'S', 'R', 'A', 'D'}

const (
	radianceVersion   = 1
	maxRadiancePixels = 1 << 28
)

// ErrBadRadiance is returned when a dump is not a radiance buffer this package wrote
var ErrBadRadiance = errors.New("not a radiance dump")

// WriteRadiance compresses the linear buffer to w
func WriteRadiance(w io.Writer, buffer *renderer.Radiance) error {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	stream := bufio.NewWriter(encoder)

	header := make([]byte, 4+4+4+4)
	copy(header[0:4], radianceMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], radianceVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(buffer.Width))
	binary.LittleEndian.PutUint32(header[12:16], uint32(buffer.Height))
	if _, err := stream.Write(header); err != nil {
		encoder.Close()
		return err
	}

	pixel := make([]byte, 24)
	for _, c := range buffer.Pix {
		binary.LittleEndian.PutUint64(pixel[0:8], math.Float64bits(c.X))
		binary.LittleEndian.PutUint64(pixel[8:16], math.Float64bits(c.Y))
		binary.LittleEndian.PutUint64(pixel[16:24], math.Float64bits(c.Z))
		if _, err := stream.Write(pixel); err != nil {
			encoder.Close()
			return err
		}
	}

	if err := stream.Flush(); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

// ReadRadiance decodes a buffer written by WriteRadiance
func ReadRadiance(r io.Reader) (*renderer.Radiance, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	header := make([]byte, 16)
	if _, err := io.ReadFull(decoder, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRadiance, err)
	}
	if [4]byte(header[0:4]) != radianceMagic {
		return nil, ErrBadRadiance
	}
	if version := binary.LittleEndian.Uint32(header[4:8]); version != radianceVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadRadiance, version)
	}

	width := int(binary.LittleEndian.Uint32(header[8:12]))
	height := int(binary.LittleEndian.Uint32(header[12:16]))
	if width <= 0 || height <= 0 || width*height > maxRadiancePixels {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrBadRadiance, width, height)
	}

	buffer := renderer.NewRadiance(width, height)
	stream := bufio.NewReader(decoder)
	pixel := make([]byte, 24)
	for i := range buffer.Pix {
		if _, err := io.ReadFull(stream, pixel); err != nil {
			return nil, fmt.Errorf("%w: truncated at pixel %d: %v", ErrBadRadiance, i, err)
		}
		buffer.Pix[i] = core.Vec3{
			X: math.Float64frombits(binary.LittleEndian.Uint64(pixel[0:8])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(pixel[8:16])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(pixel[16:24])),
		}
	}
	return buffer, nil
}

// SaveRadiance writes the buffer to path, creating parent directories as needed
func SaveRadiance(path string, buffer *renderer.Radiance) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteRadiance(file, buffer); err != nil {
		file.Close()
		return fmt.Errorf("failed to write radiance: %w", err)
	}
	return file.Close()
}

// LoadRadiance reads a buffer saved by SaveRadiance
func LoadRadiance(path string) (*renderer.Radiance, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buffer, err := ReadRadiance(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buffer, nil
}
