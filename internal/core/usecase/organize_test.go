package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type organizeHarness struct {
	fs        *fsFake
	ws        *workspaceFake
	factory   *workspaceFactoryFake
	archiver  *archiverFake
	sink      *sinkFake
	observer  *observerFake
	model     *modelFake
	extractor *extractorFake
	uc        *OrganizeBatchUseCase
}

func newOrganizeHarness() *organizeHarness {
	h := &organizeHarness{
		fs:        newFSFake(),
		archiver:  &archiverFake{},
		sink:      &sinkFake{},
		observer:  &observerFake{},
		model:     &modelFake{},
		extractor: &extractorFake{byName: map[string]domain.Extraction{}},
	}
	h.ws = &workspaceFake{root: "/tmp/organize-batch", fs: h.fs, staged: map[string][]byte{}}
	h.factory = &workspaceFactoryFake{ws: h.ws}
	router := NewFileRouter(h.fs, h.extractor, NewCategoryClassifier(h.model, h.observer), h.observer)
	h.uc = NewOrganizeBatchUseCase(h.fs, h.factory, router, h.archiver, h.sink, h.observer)
	return h
}

func upload(name, body string) domain.Upload {
	return domain.Upload{Filename: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestOrganizeRoutesArchivesAndCleansUp(t *testing.T) {
	h := newOrganizeHarness()
	h.extractor.byName["lecture.txt"] = domain.ExtractedText("week 3 lecture notes", 0)
	h.model.scores = []domain.LabelScore{{Label: "Notes", Score: 0.88}}

	report, err := h.uc.Organize(context.Background(), []domain.Upload{
		upload("lecture.txt", "week 3 lecture notes"),
		upload("cat.png", "\x89PNG"),
	})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}

	if report.TotalFiles != 2 || report.Summary[domain.CategoryNotes] != 1 || report.Summary[domain.CategoryImages] != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if len(h.archiver.folders) != 1 || h.archiver.folders[0] != h.ws.root {
		t.Fatalf("expected workspace archived, got %v", h.archiver.folders)
	}
	if report.Archive == nil || report.Archive.Name != domain.ArchiveDownloadName || report.Archive.URL == "" {
		t.Fatalf("unexpected archive: %+v", report.Archive)
	}
	if len(h.sink.published) != 1 || h.sink.published[0] != report.BatchID || h.factory.batchIDs[0] != report.BatchID {
		t.Fatalf("batch id not propagated: %v / %v", h.sink.published, h.factory.batchIDs)
	}
	if len(report.Tree) != 2 {
		t.Fatalf("expected two preview folders, got %+v", report.Tree)
	}
	if h.ws.cleanups != 1 {
		t.Fatalf("expected one cleanup, got %d", h.ws.cleanups)
	}
	if len(h.observer.batches) != 1 || h.observer.batches[0] != nil {
		t.Fatalf("unexpected observed batches: %v", h.observer.batches)
	}
}

func TestOrganizeSkipsOversizedUploads(t *testing.T) {
	h := newOrganizeHarness()

	huge := domain.Upload{Filename: "movie.mp4", Size: domain.MaxFileSize + 1, Body: strings.NewReader("")}
	report, err := h.uc.Organize(context.Background(), []domain.Upload{huge, upload("song.mp3", "ID3")})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}

	if _, staged := h.ws.staged["movie.mp4"]; staged {
		t.Fatalf("oversized upload must not be written")
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Filename != "movie.mp4" {
		t.Fatalf("unexpected skipped list: %+v", report.Skipped)
	}
	if !strings.Contains(report.Skipped[0].Reason, "too large") || !strings.Contains(report.Skipped[0].Reason, "10 MiB") {
		t.Fatalf("unexpected skip reason: %q", report.Skipped[0].Reason)
	}
	if report.TotalFiles != 1 || report.Summary[domain.CategoryMedia] != 1 {
		t.Fatalf("expected only song routed, got %+v", report.Summary)
	}
	if len(h.observer.skipped) != 1 {
		t.Fatalf("expected one observed skip, got %v", h.observer.skipped)
	}
}

func TestOrganizeAcceptsFileAtExactLimit(t *testing.T) {
	h := newOrganizeHarness()

	exact := domain.Upload{
		Filename: "disk.zip",
		Size:     domain.MaxFileSize,
		Body:     bytes.NewReader(make([]byte, domain.MaxFileSize)),
	}
	report, err := h.uc.Organize(context.Background(), []domain.Upload{exact})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}
	if len(report.Skipped) != 0 || report.Summary[domain.CategoryArchives] != 1 {
		t.Fatalf("expected file at the limit to be accepted, got %+v", report)
	}
}

func TestOrganizeSkipsBodyLongerThanLimit(t *testing.T) {
	h := newOrganizeHarness()

	lying := domain.Upload{
		Filename: "big.bin",
		Size:     10,
		Body:     bytes.NewReader(make([]byte, domain.MaxFileSize+1)),
	}
	report, err := h.uc.Organize(context.Background(), []domain.Upload{lying, upload("x.css", "a{}")})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Filename != "big.bin" {
		t.Fatalf("expected big.bin skipped, got %+v", report.Skipped)
	}
}

func TestOrganizeWithoutAcceptedFilesIsInvalidInput(t *testing.T) {
	h := newOrganizeHarness()

	huge := domain.Upload{Filename: "huge.iso", Size: domain.MaxFileSize + 1, Body: strings.NewReader("")}
	report, err := h.uc.Organize(context.Background(), []domain.Upload{huge})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if report == nil || len(report.Skipped) != 1 {
		t.Fatalf("expected report with skipped file, got %+v", report)
	}
	if len(h.archiver.folders) != 0 {
		t.Fatalf("archiver must not run without files")
	}
	if h.ws.cleanups != 1 {
		t.Fatalf("expected cleanup, got %d", h.ws.cleanups)
	}
}

func TestOrganizeCleansUpWhenArchiveFails(t *testing.T) {
	h := newOrganizeHarness()
	h.archiver.err = errors.New("disk full")

	_, err := h.uc.Organize(context.Background(), []domain.Upload{upload("a.gif", "GIF89a")})
	if !errors.Is(err, h.archiver.err) {
		t.Fatalf("expected archive error, got %v", err)
	}
	if h.ws.cleanups != 1 {
		t.Fatalf("expected cleanup, got %d", h.ws.cleanups)
	}
	if len(h.sink.published) != 0 {
		t.Fatalf("nothing should be published")
	}
	if len(h.observer.batches) != 1 || h.observer.batches[0] == nil {
		t.Fatalf("expected failed batch observed, got %v", h.observer.batches)
	}
}

func TestOrganizeAbortsOnStagingError(t *testing.T) {
	h := newOrganizeHarness()
	h.ws.stageErr = errors.New("no space left on device")

	_, err := h.uc.Organize(context.Background(), []domain.Upload{upload("a.gif", "GIF89a")})
	if !errors.Is(err, h.ws.stageErr) {
		t.Fatalf("expected staging error, got %v", err)
	}
	if h.ws.cleanups != 1 {
		t.Fatalf("expected cleanup, got %d", h.ws.cleanups)
	}
}

func TestOrganizeWorkspaceCreateError(t *testing.T) {
	h := newOrganizeHarness()
	h.factory.createErr = errors.New("mkdtemp failed")

	_, err := h.uc.Organize(context.Background(), []domain.Upload{upload("a.gif", "GIF89a")})
	if !errors.Is(err, h.factory.createErr) {
		t.Fatalf("expected create error, got %v", err)
	}
	if h.ws.cleanups != 0 {
		t.Fatalf("no workspace to clean, got %d cleanups", h.ws.cleanups)
	}
}

func TestOrganizeInPlaceWithoutArchive(t *testing.T) {
	h := newOrganizeHarness()
	h.fs.files = []string{"a.html", "b.unknown"}

	report, err := h.uc.OrganizeInPlace(context.Background(), "/home/user/Downloads", false)
	if err != nil {
		t.Fatalf("OrganizeInPlace() error = %v", err)
	}
	if report.Summary[domain.CategoryCode] != 1 || report.Summary[domain.FallbackCategory] != 1 {
		t.Fatalf("unexpected summary: %v", report.Summary)
	}
	if len(h.archiver.folders) != 0 || report.Archive != nil {
		t.Fatalf("archive must not be built")
	}
	if h.fs.listedDirs[0] != "/home/user/Downloads" || h.fs.treeRoots[0] != "/home/user/Downloads" {
		t.Fatalf("unexpected dirs: %v / %v", h.fs.listedDirs, h.fs.treeRoots)
	}
}

func TestOrganizeInPlaceWithArchive(t *testing.T) {
	h := newOrganizeHarness()
	h.fs.files = []string{"a.jpeg"}

	report, err := h.uc.OrganizeInPlace(context.Background(), "/data/inbox", true)
	if err != nil {
		t.Fatalf("OrganizeInPlace() error = %v", err)
	}
	if report.Archive == nil || report.Archive.Path != "/data/inbox.zip" {
		t.Fatalf("unexpected archive: %+v", report.Archive)
	}
	if len(h.sink.published) != 0 {
		t.Fatalf("in-place runs keep the archive next to the folder")
	}
}
