package build

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/storage"
)

// prepareManifest fills the manifest inputs and loads the previous manifest.
func (s *Service) prepareManifest(ctx context.Context, st *State) {
	if st.Manifest != nil {
		return
	}
	m := manifest.New(s.version)
	m.ID = st.BuildID
	m.Timestamp = st.Report.Start.UTC()
	m.Inputs.ConfigHash = st.Config.Hash()
	m.Inputs.SidebarHash = st.Declared.Hash()
	for locale, set := range st.Sets {
		m.Inputs.DocsHashes[locale] = set.Hash()
	}
	m.Inputs.Git = st.Git
	m.Outputs.RouteTableHash = st.Report.TableHash
	m.Outputs.Pages = st.Table.PageCount()
	st.Manifest = m

	prev, err := s.previousManifest(ctx, st)
	if err != nil {
		st.Logger.Debug("No previous build manifest", logfields.Error(err))
		return
	}
	st.Previous = prev
}

func (s *Service) previousManifest(ctx context.Context, st *State) (*manifest.BuildManifest, error) {
	if s.store != nil {
		hash, err := s.store.Latest(ctx)
		if err != nil {
			return nil, err
		}
		obj, err := s.store.Get(ctx, hash)
		if err != nil {
			return nil, err
		}
		return manifest.FromJSON(obj.Data)
	}
	return manifest.ReadFile(filepath.Join(st.Config.OutDir(), manifest.FileName))
}

// skipUnchanged reports whether the inputs equal those of the previous
// successful build and its artifacts are still in place.
func (s *Service) skipUnchanged(st *State) (bool, string) {
	s.prepareManifest(context.Background(), st)
	prev := st.Previous
	switch {
	case st.Request.Force || prev == nil:
		return false, ""
	case prev.Status != manifest.StatusSuccess:
		return false, ""
	case prev.InputHash() != st.Manifest.InputHash():
		return false, ""
	case prev.Outputs.RouteTableHash != st.Report.TableHash:
		return false, ""
	case !artifactsIntact(st.Config.OutDir(), prev):
		st.Logger.Info("Inputs unchanged but artifacts are missing or modified; rebuilding")
		return false, ""
	}
	return true, "no_changes"
}

func artifactsIntact(outDir string, m *manifest.BuildManifest) bool {
	table, err := routes.ReadFile(filepath.Join(outDir, routes.FileName))
	if err != nil {
		return false
	}
	if hash, err := table.Hash(); err != nil || hash != m.Outputs.RouteTableHash {
		return false
	}
	for _, rel := range m.Outputs.SearchIndexes {
		if _, err := search.Load(filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
			return false
		}
	}
	_, err = os.Stat(filepath.Join(outDir, manifest.FileName))
	return err == nil
}

func (s *Service) stageWriteArtifacts(ctx context.Context, st *State) error {
	s.prepareManifest(ctx, st)
	outDir := st.Config.OutDir()
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return newFatalStageError(StageWriteArtifacts, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", outDir).Build())
	}

	tablePath, err := st.Table.WriteFile(outDir)
	if err != nil {
		return newFatalStageError(StageWriteArtifacts, err)
	}
	files, err := search.WriteFiles(outDir, st.Indexes)
	if err != nil {
		return newFatalStageError(StageWriteArtifacts, err)
	}
	st.Manifest.Outputs.SearchIndexes = files
	st.Report.Files = append([]string{routes.FileName}, files...)
	st.Logger.Info("Artifacts written", logfields.Path(tablePath), logfields.Count(len(st.Report.Files)))
	return nil
}

func (s *Service) stageRecordManifest(ctx context.Context, st *State) error {
	m := st.Manifest
	m.Status = manifest.StatusSuccess
	m.Duration = time.Since(st.Report.Start).Milliseconds()
	m.Warnings = len(st.Report.Warnings)

	if s.store != nil {
		if err := s.storeArtifacts(ctx, st); err != nil {
			return newFatalStageError(StageRecordManifest, err)
		}
	}

	p, err := m.WriteFile(st.Config.OutDir())
	if err != nil {
		return newFatalStageError(StageRecordManifest, errors.WrapError(err, errors.CategoryFileSystem, "failed to write build manifest").Build())
	}
	st.Report.Files = append(st.Report.Files, manifest.FileName)
	st.Logger.Debug("Build manifest written", logfields.Path(p))
	return nil
}

// storeArtifacts puts the route table, search indexes and manifest into the
// object store and moves refs/latest to the manifest.
func (s *Service) storeArtifacts(ctx context.Context, st *State) error {
	m := st.Manifest
	wrap := func(err error, msg string) error {
		return errors.WrapError(err, errors.CategoryFileSystem, msg).WithContext("build_id", st.BuildID).Build()
	}

	tableData, err := st.Table.Bytes()
	if err != nil {
		return wrap(err, "failed to serialize route table")
	}
	hashes := make([]string, 0, len(st.Indexes)+2)
	put := func(t storage.ObjectType, name string, data []byte) error {
		h, err := s.store.Put(ctx, &storage.Object{Type: t, Name: name, Data: data})
		if err != nil {
			return err
		}
		m.Outputs.Objects[name] = h
		hashes = append(hashes, h)
		return nil
	}
	if err := put(storage.ObjectTypeRouteTable, routes.FileName, tableData); err != nil {
		return wrap(err, "failed to store route table")
	}
	for i, ix := range st.Indexes {
		data, err := ix.Bytes()
		if err != nil {
			return wrap(err, "failed to serialize search index")
		}
		name := ix.Locale
		if i < len(m.Outputs.SearchIndexes) {
			name = m.Outputs.SearchIndexes[i]
		}
		if err := put(storage.ObjectTypeSearchIndex, name, data); err != nil {
			return wrap(err, "failed to store search index")
		}
	}

	data, err := m.ToJSON()
	if err != nil {
		return wrap(err, "failed to serialize build manifest")
	}
	manifestHash, err := s.store.Put(ctx, &storage.Object{Type: storage.ObjectTypeBuildManifest, Name: manifest.FileName, Data: data})
	if err != nil {
		return wrap(err, "failed to store build manifest")
	}
	hashes = append(hashes, manifestHash)
	if err := s.store.AddBuildRef(ctx, st.BuildID, hashes); err != nil {
		return wrap(err, "failed to record build ref")
	}
	if err := s.store.SetLatest(ctx, manifestHash); err != nil {
		return wrap(err, "failed to update latest ref")
	}
	st.ManifestObject = manifestHash
	return nil
}
