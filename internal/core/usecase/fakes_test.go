package usecase

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

type modelFake struct {
	scores     []domain.LabelScore
	byText     map[string][]domain.LabelScore
	err        error
	calls      int
	lastText   string
	lastLabels []string
}

func (f *modelFake) Classify(_ context.Context, text string, labels []string) ([]domain.LabelScore, error) {
	f.calls++
	f.lastText = text
	f.lastLabels = labels
	if f.err != nil {
		return nil, f.err
	}
	if scores, ok := f.byText[text]; ok {
		return scores, nil
	}
	return f.scores, nil
}

type extractorFake struct {
	byName map[string]domain.Extraction
	calls  []string
}

func (f *extractorFake) Extract(_ context.Context, path string) domain.Extraction {
	name := filepath.Base(path)
	f.calls = append(f.calls, name)
	if extraction, ok := f.byName[name]; ok {
		return extraction
	}
	return domain.Extraction{Outcome: domain.ExtractionEmpty}
}

type fsFake struct {
	files      []string
	dirs       map[string]int
	moves      map[string]string
	mkdirErr   error
	moveErr    error
	treeErr    error
	treeRoots  []string
	listErr    error
	listedDirs []string
}

func newFSFake(files ...string) *fsFake {
	return &fsFake{
		files: files,
		dirs:  map[string]int{},
		moves: map[string]string{},
	}
}

func (f *fsFake) ListFiles(dir string) ([]string, error) {
	f.listedDirs = append(f.listedDirs, dir)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]string(nil), f.files...)
	sort.Strings(out)
	return out, nil
}

func (f *fsFake) EnsureDir(path string) error {
	if f.mkdirErr != nil {
		return f.mkdirErr
	}
	f.dirs[path]++
	return nil
}

func (f *fsFake) Move(src, dstDir string) (string, error) {
	if f.moveErr != nil {
		return "", f.moveErr
	}
	name := filepath.Base(src)
	if _, dup := f.moves[name]; dup {
		return "", errors.New("moved twice: " + name)
	}
	f.moves[name] = dstDir
	return name, nil
}

func (f *fsFake) Tree(root string) ([]domain.TreeFolder, error) {
	f.treeRoots = append(f.treeRoots, root)
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	grouped := map[string][]string{}
	for name, dir := range f.moves {
		category := filepath.Base(dir)
		grouped[category] = append(grouped[category], name)
	}
	out := make([]domain.TreeFolder, 0, len(grouped))
	for category, files := range grouped {
		sort.Strings(files)
		out = append(out, domain.TreeFolder{Category: category, Files: files})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

type workspaceFake struct {
	root     string
	fs       *fsFake
	staged   map[string][]byte
	stageErr error
	cleanups int
}

func (w *workspaceFake) Root() string { return w.root }

func (w *workspaceFake) Stage(name string, body io.Reader, limit int64) (string, error) {
	if w.stageErr != nil {
		return "", w.stageErr
	}
	raw, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > limit {
		return "", domain.WrapError(domain.ErrFileTooLarge, "stage upload", errors.New(name))
	}
	w.staged[name] = raw
	w.fs.files = append(w.fs.files, name)
	return filepath.Join(w.root, name), nil
}

func (w *workspaceFake) Cleanup() error {
	w.cleanups++
	return nil
}

type workspaceFactoryFake struct {
	ws        *workspaceFake
	createErr error
	batchIDs  []string
}

func (f *workspaceFactoryFake) Create(batchID string) (ports.Workspace, error) {
	f.batchIDs = append(f.batchIDs, batchID)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.ws, nil
}

type archiverFake struct {
	folders []string
	err     error
}

func (f *archiverFake) Archive(_ context.Context, folder string) (*domain.ArchiveRef, error) {
	f.folders = append(f.folders, folder)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ArchiveRef{Name: filepath.Base(folder) + ".zip", Path: folder + ".zip", Size: 128}, nil
}

type sinkFake struct {
	published []string
	err       error
}

func (f *sinkFake) Publish(_ context.Context, batchID string, archive *domain.ArchiveRef) (*domain.ArchiveRef, error) {
	f.published = append(f.published, batchID)
	if f.err != nil {
		return nil, f.err
	}
	out := *archive
	out.Name = domain.ArchiveDownloadName
	out.URL = "/v1/archives/token-" + batchID
	return &out, nil
}

type observerFake struct {
	placements  []domain.Placement
	abstentions []string
	skipped     []string
	batches     []error
}

func (o *observerFake) ObservePlacement(category domain.Category, tier domain.RoutingTier) {
	o.placements = append(o.placements, domain.Placement{Category: category, Tier: tier})
}

func (o *observerFake) ObserveAbstention(reason string) {
	o.abstentions = append(o.abstentions, reason)
}

func (o *observerFake) ObserveSkipped(reason string) {
	o.skipped = append(o.skipped, reason)
}

func (o *observerFake) ObserveBatch(_ int, _ time.Duration, err error) {
	o.batches = append(o.batches, err)
}
