package manager

import (
	"fmt"
	"sort"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/index"
	"github.com/voguefx/vogue/internal/scanner"
	"github.com/voguefx/vogue/internal/versioning"
)

// ScanReport summarizes one reconciliation pass.
type ScanReport struct {
	AddedAssets   []string
	AddedShots    []string
	AddedVersions []string
	Conflicts     []string
	Skipped       []string
}

// Empty reports whether the pass changed or flagged anything.
func (r *ScanReport) Empty() bool {
	return len(r.AddedAssets) == 0 && len(r.AddedShots) == 0 &&
		len(r.AddedVersions) == 0 && len(r.Conflicts) == 0
}

// ScanFilesystem walks the project directories and adopts entities and
// version files present on disk but absent from the store.
// Reconciliation is additive: nothing stored is ever removed because a
// file went missing. When a discovered version number collides with a
// stored version, the stored record wins and the discovery is reported
// as a conflict.
func (m *Manager) ScanFilesystem() (*ScanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}

	res, err := scanner.New(m.logger).Scan(m.store.Root())
	if err != nil {
		return nil, err
	}
	report := &ScanReport{Skipped: res.Skipped}

	for _, a := range res.Assets {
		key := versioning.Key{Name: a.Name, AssetType: a.Type}
		added, err := m.adoptEntityLocked(key, a.Meta)
		if err != nil {
			return nil, err
		}
		if added {
			report.AddedAssets = append(report.AddedAssets, key.String())
		}
	}
	for _, s := range res.Shots {
		key := versioning.Key{Name: s.Name, Sequence: s.Sequence}
		added, err := m.adoptEntityLocked(key, s.Meta)
		if err != nil {
			return nil, err
		}
		if added {
			report.AddedShots = append(report.AddedShots, key.String())
		}
	}

	keys := make([]string, 0, len(res.Versions))
	for k := range res.Versions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, dv := range res.Versions[k] {
			if err := m.adoptVersionLocked(dv, report); err != nil {
				return nil, err
			}
		}
	}

	if !report.Empty() {
		if err := m.exportAggregateLocked(); err != nil {
			return nil, err
		}
	}
	m.logger.Printf("scan: +%d assets +%d shots +%d versions, %d conflicts, %d skipped",
		len(report.AddedAssets), len(report.AddedShots), len(report.AddedVersions),
		len(report.Conflicts), len(report.Skipped))
	return report, nil
}

// adoptEntityLocked ensures the folder chain for a discovered entity
// and reports whether the leaf folder was new.
func (m *Manager) adoptEntityLocked(key versioning.Key, meta map[string]any) (bool, error) {
	before, err := m.store.ListFolders()
	if err != nil {
		return false, err
	}
	count := len(before)

	folder, product, err := ensureEntity(m.store, m.cfg.User, key)
	if err != nil {
		return false, err
	}

	after, err := m.store.ListFolders()
	if err != nil {
		return false, err
	}
	added := len(after) > count

	if added && len(meta) > 0 {
		folder.Attrib = meta
		if err := m.store.PutFolder(folder); err != nil {
			return false, err
		}
	}
	if added {
		m.indexUpsert(index.RowForFolder(folder))
		m.indexUpsert(index.RowForProduct(product))
	}
	return added, nil
}

// adoptVersionLocked records a discovered scene file as a version,
// unless the number is already taken.
func (m *Manager) adoptVersionLocked(dv scanner.Version, report *ScanReport) error {
	_, product, err := ensureEntity(m.store, m.cfg.User, dv.Key)
	if err != nil {
		return err
	}

	for _, vid := range product.Versions {
		v, err := m.store.GetVersion(vid)
		if err != nil {
			continue
		}
		if v.Number == dv.Number {
			if v.ScenePath != dv.Path {
				report.Conflicts = append(report.Conflicts,
					fmt.Sprintf("%s %s: stored record kept, found %s", dv.Key, versioning.Format(dv.Number), dv.Path))
			}
			return nil
		}
	}

	v := entity.NewVersion(dv.Number, product.ID, m.cfg.User)
	v.ScenePath = dv.Path
	v.Comment = "adopted from filesystem scan"
	v.CreatedAt = dv.ModTime.UTC()
	v.UpdatedAt = v.CreatedAt
	if err := m.store.PutVersion(v); err != nil {
		return err
	}

	product.AttachVersion(v.ID, v.Number)
	product.RecomputeLatest(m.survivingNumbersLocked(product))
	product.Touch(m.cfg.User)
	if err := m.store.PutProduct(product); err != nil {
		return err
	}

	m.indexUpsert(index.RowForVersion(v))
	m.indexUpsert(index.RowForProduct(product))
	report.AddedVersions = append(report.AddedVersions, fmt.Sprintf("%s %s", dv.Key, versioning.Format(dv.Number)))
	return nil
}
