package target

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// WriteImage encodes img as zstd-compressed msgpack.
func WriteImage(w io.Writer, img *Image) error {
	if img == nil {
		return errors.New("target: nil image")
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	payload := *img
	payload.Schema = Schema
	if err := msgpack.NewEncoder(zw).Encode(&payload); err != nil {
		zw.Close()
		return fmt.Errorf("target: encode image: %w", err)
	}
	return zw.Close()
}

// ReadImage decodes an image written by WriteImage.
func ReadImage(r io.Reader) (*Image, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var img Image
	if err := msgpack.NewDecoder(zr).Decode(&img); err != nil {
		return nil, fmt.Errorf("target: decode image: %w", err)
	}
	if img.Schema != Schema {
		return nil, fmt.Errorf("target: image schema %d, want %d", img.Schema, Schema)
	}
	return &img, nil
}

// SaveImage writes img to path, replacing it atomically.
func SaveImage(path string, img *Image) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".futprint-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = WriteImage(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// LoadImage reads an image file.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := ReadImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
