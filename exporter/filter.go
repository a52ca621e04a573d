package exporter

import (
	"go.uber.org/zap"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

// Filter drops rows that must not reach the output, runs the augmentation
// hook, and rewrites header and flag fields for export. Dropping here is
// policy, not error; each dropped internal import is logged so the
// conservative drop is visible in diagnostics.
func (e *Exporter) Filter() error {
	if e.state != StateBuilt {
		return uerrors.InvalidState("Filter", e.state.String())
	}

	if err := e.filterImports(); err != nil {
		return err
	}
	e.filterExports()
	if err := e.removeInternalImports(); err != nil {
		return err
	}

	if e.Augment != nil {
		if err := e.Augment(e); err != nil {
			return err
		}
	}

	e.rewriteSummary()
	e.rewriteExportFlags()

	e.state = StateFiltered
	Logger().Debug("filtered tables",
		zap.String("container", e.src.Name),
		zap.Int("imports", len(e.imports)),
		zap.Int("exports", len(e.exports)))
	return nil
}

// filterImports drops rows whose name triple is all "None" and rows whose
// resolved object is absent.
func (e *Exporter) filterImports() error {
	kept := e.imports[:0]
	for _, entry := range e.imports {
		empty, err := e.importIsEmpty(&entry.row)
		if err != nil {
			return err
		}
		if empty {
			continue
		}
		if entry.obj == nil {
			continue
		}
		kept = append(kept, entry)
	}
	e.imports = kept
	return nil
}

func (e *Exporter) importIsEmpty(row *upk.ImportRow) (bool, error) {
	for _, n := range [3]upk.FName{row.ClassPackage, row.ClassName, row.ObjectName} {
		s, err := e.src.NameString(n)
		if err != nil {
			return false, err
		}
		if s != upk.NoneName {
			return false, nil
		}
	}
	return true, nil
}

// filterExports drops zero-size rows, then the world object and every
// export whose outer chain contains it.
func (e *Exporter) filterExports() {
	world := make(map[int]bool)
	for _, entry := range e.exports {
		if _, ok := entry.obj.(*upk.World); ok {
			world[entry.srcIndex] = true
		}
	}

	kept := e.exports[:0]
	for _, entry := range e.exports {
		if entry.row.SerialSize == 0 {
			continue
		}
		if entry.srcIndex >= 0 && (world[entry.srcIndex] || e.outerChainHits(entry.srcIndex, world)) {
			continue
		}
		kept = append(kept, entry)
	}
	e.exports = kept
}

// outerChainHits walks an export's outer chain in the source table and
// reports whether it passes through any of the marked rows.
func (e *Exporter) outerChainHits(srcIndex int, marked map[int]bool) bool {
	row := e.src.Export(srcIndex)
	for row != nil && !row.Outer.IsNull() {
		k, err := row.Outer.ExportIndex()
		if err != nil {
			return false
		}
		if marked[k] {
			return true
		}
		row = e.src.Export(k)
	}
	return false
}

// removeInternalImports drops imports whose resolved object's outer is an
// export of this container: kept, they would self-reference the container
// through an import. Such rows are flagged, not repaired.
func (e *Exporter) removeInternalImports() error {
	kept := e.imports[:0]
	for _, entry := range e.imports {
		internal := false
		if outer := entry.obj.Outer(); outer != nil && outer.Container() == e.src {
			for i := range e.src.Exports {
				if e.src.Object(upk.FromExport(i)) == outer {
					internal = true
					break
				}
			}
		}
		if internal {
			full, err := e.src.FullName(upk.FromImport(entry.srcIndex))
			if err != nil {
				full = entry.obj.FullName()
			}
			Logger().Warn("dropping internal import",
				zap.String("container", e.src.Name),
				zap.String("import", full))
			continue
		}
		kept = append(kept, entry)
	}
	e.imports = kept
	return nil
}

// rewriteSummary normalizes the header for export
func (e *Exporter) rewriteSummary() {
	e.summary.LicenseeVersion = 0
	e.summary.CookerVersion = 0
	e.summary.EngineVersion = exportEngineVersion
	e.summary.PackageFlags = exportPackageFlags
	e.summary.AdditionalPackagesToCook = nil
	e.summary.TextureAllocations = nil
	e.summary.ThumbnailOffset = 0
}

// rewriteExportFlags applies the per-variant flag rules
func (e *Exporter) rewriteExportFlags() {
	for i := range e.exports {
		entry := &e.exports[i]
		switch entry.obj.(type) {
		case *upk.Package:
			entry.row.ObjectFlags = packageObjectFlags
			entry.row.PackageFlags = exportPackageFlags
		case *upk.Material, *upk.MaterialInstance, *upk.Texture, *upk.SkeletalMesh, *upk.StaticMesh:
			entry.row.ObjectFlags = resourceObjectFlags
			entry.row.PackageFlags = 0
		default:
			entry.row.ObjectFlags = defaultObjectFlags
			entry.row.PackageFlags = 0
		}
	}
}

// Reindex rewrites every reference in the working tables to its index in
// the filtered tables. References whose target was dropped become null.
func (e *Exporter) Reindex() error {
	if e.state != StateFiltered {
		return uerrors.InvalidState("Reindex", e.state.String())
	}

	for i := range e.exports {
		entry := &e.exports[i]
		for _, ref := range [4]*upk.ObjectIndex{
			&entry.row.Outer, &entry.row.Class, &entry.row.Super, &entry.row.Archetype,
		} {
			if ref.IsNull() {
				continue
			}
			*ref = e.FindObjectIndex(e.src.Object(*ref))
		}
	}
	for i := range e.imports {
		entry := &e.imports[i]
		if entry.row.Outer.IsNull() {
			continue
		}
		entry.row.Outer = e.FindObjectIndex(e.src.Object(entry.row.Outer))
	}

	e.state = StateReindexed
	return nil
}
