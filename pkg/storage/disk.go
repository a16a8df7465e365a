// Package storage persists the fetched catalog between runs as a
// gzipped JSON snapshot. The in-memory store stays authoritative, the
// snapshot only survives restarts.
package storage

import (
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/wbpulse/wbpulse/pkg/catalog"
)

const catalogFile = "catalog.json.gz"

// ErrNoSnapshot is returned when no snapshot has been written yet.
var ErrNoSnapshot = errors.New("no catalog snapshot on disk")

type DiskStorage struct {
	Path string
}

func NewDiskStorage(path string) *DiskStorage {
	return &DiskStorage{Path: path}
}

func (d *DiskStorage) filename() string {
	return filepath.Join(d.Path, catalogFile)
}

type snapshot struct {
	Products []catalog.Product `json:"products"`
}

// SaveCatalog writes the snapshot atomically, the previous one stays
// intact when anything fails midway.
func (d *DiskStorage) SaveCatalog(products []catalog.Product) error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return err
	}
	data, err := sonic.Marshal(snapshot{Products: products})
	if err != nil {
		return err
	}

	tmp := d.filename() + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(file)
	if _, err = zw.Write(data); err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, d.filename())
}

// LoadCatalog reads the snapshot back, ErrNoSnapshot when none exists.
func (d *DiskStorage) LoadCatalog() ([]catalog.Product, error) {
	file, err := os.Open(d.filename())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// ClearCatalog deletes the snapshot, a missing file is not an error.
func (d *DiskStorage) ClearCatalog() error {
	err := os.Remove(d.filename())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
