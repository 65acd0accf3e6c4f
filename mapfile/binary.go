package mapfile

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/lixenwraith/gridpath/navigation"
)

const (
	gridFormat  = "gridpath"
	gridVersion = 1
)

var ErrBadHeader = errors.New("bad grid header")

// gridHeader is the first line of a grid file
type gridHeader struct {
	Format      string `json:"format"`
	Version     int    `json:"version"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Fingerprint string `json:"fingerprint"`
}

// WriteGrid stores g as a zstd stream: a JSON header line followed by one byte per cell
func WriteGrid(path string, g *navigation.Grid) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := EncodeGrid(f, g); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// EncodeGrid writes the compressed grid stream to w
func EncodeGrid(w io.Writer, g *navigation.Grid) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	hb, _ := json.Marshal(gridHeader{
		Format:      gridFormat,
		Version:     gridVersion,
		Width:       g.Width(),
		Height:      g.Height(),
		Fingerprint: g.Fingerprint(),
	})
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	for _, c := range g.Mask() {
		v := byte(0)
		if c != 0 {
			v = 1
		}
		if err := bw.WriteByte(v); err != nil {
			enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadGrid loads a grid written by WriteGrid
func ReadGrid(path string) (*navigation.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := DecodeGrid(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return g, nil
}

// DecodeGrid reads a compressed grid stream and checks its fingerprint
func DecodeGrid(r io.Reader) (*navigation.Grid, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	var hdr gridHeader
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if hdr.Format != gridFormat || hdr.Version != gridVersion {
		return nil, fmt.Errorf("format %q version %d: %w", hdr.Format, hdr.Version, ErrBadHeader)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 {
		return nil, fmt.Errorf("dimensions %dx%d: %w", hdr.Width, hdr.Height, ErrBadHeader)
	}

	mask := make([]byte, hdr.Width*hdr.Height)
	if _, err := io.ReadFull(br, mask); err != nil {
		return nil, fmt.Errorf("cells: %w", err)
	}
	g, err := navigation.NewGrid(hdr.Width, hdr.Height, mask)
	if err != nil {
		return nil, err
	}
	if hdr.Fingerprint != "" && hdr.Fingerprint != g.Fingerprint() {
		return nil, fmt.Errorf("fingerprint mismatch: %w", ErrBadHeader)
	}
	return g, nil
}
