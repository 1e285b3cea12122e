package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	log "github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/cachemeta"
	"github.com/llehouerou/wavecore/internal/compression"
	"github.com/llehouerou/wavecore/internal/contentaddr"
)

// readStatus classifies the outcome of a disk lookup.
type readStatus int

const (
	readAbsent  readStatus = iota // no metadata
	readHit                       // valid, unexpired bytes
	readExpired                   // metadata says expired
	readMissing                   // metadata present but the file is gone
	readCorrupt                   // bytes do not match metadata or do not decode
	readFailed                    // transient I/O error
)

// diskTier stores one file per entry at {kind dir}/{storage id} and indexes
// it in the metadata store. Callers serialize access per kind.
type diskTier struct {
	fs    billy.Filesystem
	meta  cachemeta.Store
	codec *compression.Codec
}

func (d *diskTier) path(kind Kind, storageID string) string {
	return d.fs.Join(kind.Dir(), storageID)
}

func (d *diskTier) init() error {
	for _, k := range Kinds {
		if err := d.fs.MkdirAll(k.Dir(), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", k.Dir(), err)
		}
	}
	return nil
}

// read returns the decoded bytes of (kind, key) when present and fresh.
// The metadata entry is returned for every status except readAbsent and
// readFailed so the caller can delete conditionally.
func (d *diskTier) read(ctx context.Context, kind Kind, key string, now time.Time) ([]byte, cachemeta.Entry, readStatus, error) {
	id := contentaddr.Address(key)
	e, ok, err := d.meta.Get(ctx, kind.Dir(), id)
	if err != nil {
		return nil, cachemeta.Entry{}, readFailed, err
	}
	if !ok {
		return nil, cachemeta.Entry{}, readAbsent, nil
	}
	if e.Key != key {
		// Distinct keys sharing a storage id; treat the stored one as foreign.
		return nil, cachemeta.Entry{}, readAbsent, nil
	}
	if e.Expired(now) {
		return nil, e, readExpired, nil
	}

	raw, err := util.ReadFile(d.fs, d.path(kind, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, e, readMissing, nil
	}
	if err != nil {
		return nil, e, readFailed, err
	}

	data, err := d.decode(kind, e, raw)
	if err != nil {
		return nil, e, readCorrupt, err
	}
	return data, e, readHit, nil
}

func (d *diskTier) decode(kind Kind, e cachemeta.Entry, raw []byte) ([]byte, error) {
	if int64(len(raw)) != e.Size {
		return nil, fmt.Errorf("%w: size %d, want %d", errCorrupt, len(raw), e.Size)
	}
	if sum := xxhash.Sum64(raw); sum != e.Checksum {
		return nil, fmt.Errorf("%w: checksum %x, want %x", errCorrupt, sum, e.Checksum)
	}
	if !kind.compressed() {
		return raw, nil
	}
	data, err := d.codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return data, nil
}

// write stores data through a temp file and rename, then records metadata.
func (d *diskTier) write(ctx context.Context, kind Kind, key string, data []byte, createdAt, expiresAt time.Time) error {
	stored := data
	if kind.compressed() {
		stored = d.codec.Compress(data)
	}

	id := contentaddr.Address(key)
	if err := d.writeFile(kind, id, stored); err != nil {
		return err
	}

	return d.meta.Put(ctx, cachemeta.Entry{
		Kind:      kind.Dir(),
		Key:       key,
		StorageID: id,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		Size:      int64(len(stored)),
		Checksum:  xxhash.Sum64(stored),
	})
}

func (d *diskTier) writeFile(kind Kind, id string, data []byte) error {
	tmp, err := d.fs.TempFile(kind.Dir(), "."+id+"-")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = d.fs.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = d.fs.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return err
	}
	return d.fs.Rename(tmp.Name(), d.path(kind, id))
}

// removeIf deletes the entry only if its metadata still has createdAt, so a
// newer write of the same key survives a stale delete.
func (d *diskTier) removeIf(ctx context.Context, kind Kind, e cachemeta.Entry) (bool, error) {
	deleted, err := d.meta.DeleteIf(ctx, kind.Dir(), e.StorageID, e.CreatedAt)
	if err != nil || !deleted {
		return false, err
	}
	if err := d.fs.Remove(d.path(kind, e.StorageID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return true, err
	}
	return true, nil
}

// clear drops every entry of kind, metadata first.
func (d *diskTier) clear(ctx context.Context, kind Kind) error {
	if err := d.meta.DeleteKind(ctx, kind.Dir()); err != nil {
		return err
	}
	if err := util.RemoveAll(d.fs, kind.Dir()); err != nil {
		return err
	}
	return d.fs.MkdirAll(kind.Dir(), 0o755)
}

// sweep deletes expired entries of kind and files without metadata (left by
// interrupted writes). It returns the number of expired entries removed.
func (d *diskTier) sweep(ctx context.Context, kind Kind, now time.Time) (int, error) {
	logger := log.WithFields(log.Fields{
		"package":  "cache",
		"struct":   "diskTier",
		"function": "sweep",
		"kind":     kind.String(),
	})

	expired, err := d.meta.Expired(ctx, kind.Dir(), now)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range expired {
		deleted, err := d.removeIf(ctx, kind, e)
		if err != nil {
			logger.WithError(err).Warnf("failed to remove expired entry %s", e.StorageID)
			continue
		}
		if deleted {
			removed++
		}
	}

	if err := d.removeOrphans(ctx, kind); err != nil {
		logger.WithError(err).Warn("failed to remove orphan files")
	}
	return removed, nil
}

func (d *diskTier) removeOrphans(ctx context.Context, kind Kind) error {
	infos, err := d.fs.ReadDir(kind.Dir())
	if err != nil {
		return err
	}
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if contentaddr.Valid(name) {
			_, ok, err := d.meta.Get(ctx, kind.Dir(), name)
			if err != nil || ok {
				continue
			}
		}
		_ = d.fs.Remove(d.fs.Join(kind.Dir(), name)) //nolint:errcheck // best-effort cleanup
	}
	return nil
}

// files lists the storage ids present on disk for kind.
func (d *diskTier) files(kind Kind) ([]string, error) {
	infos, err := d.fs.ReadDir(kind.Dir())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() && contentaddr.Valid(info.Name()) {
			ids = append(ids, info.Name())
		}
	}
	return ids, nil
}
