package remote

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

// Snapshot is a frozen copy of the remote catalog, written by the
// catalog-snapshot tool and served by SnapshotSource for deployments that
// must not depend on the remote API at runtime.
type Snapshot struct {
	TakenAt    time.Time         `json:"takenAt"`
	Products   []catalog.Product `json:"products"`
	Categories []string          `json:"categories"`
}

// WriteSnapshot gzip-compresses the snapshot as JSON into w.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	zw := pgzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "flush snapshot")
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	zr, err := pgzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer zr.Close()

	var snap Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snap, nil
}

var _ catalog.Source = (*SnapshotSource)(nil)

// SnapshotSource serves the catalog.Source contract from a snapshot file
// loaded once at construction.
type SnapshotSource struct {
	snap *Snapshot
	byID map[int64]*catalog.Product
}

// OpenSnapshotSource loads a snapshot file from disk.
func OpenSnapshotSource(path string) (*SnapshotSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot file")
	}
	defer f.Close()

	snap, err := ReadSnapshot(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", path)
	}
	return NewSnapshotSource(snap), nil
}

// NewSnapshotSource wraps an in-memory snapshot.
func NewSnapshotSource(snap *Snapshot) *SnapshotSource {
	byID := make(map[int64]*catalog.Product, len(snap.Products))
	for i := range snap.Products {
		byID[snap.Products[i].ID] = &snap.Products[i]
	}
	return &SnapshotSource{snap: snap, byID: byID}
}

func (s *SnapshotSource) List(_ context.Context) ([]catalog.Product, error) {
	return append([]catalog.Product(nil), s.snap.Products...), nil
}

func (s *SnapshotSource) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *SnapshotSource) Categories(_ context.Context) ([]string, error) {
	if len(s.snap.Categories) > 0 {
		return append([]string(nil), s.snap.Categories...), nil
	}
	return catalog.Categories(s.snap.Products), nil
}
