package app

import (
	"context"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"worldquiz/internal/domain"
)

// ReferenceWriter persists imported rows atomically.
type ReferenceWriter interface {
	BulkInsertReferenceEntries(ctx context.Context, entries []domain.ReferencePair) error
}

// ImportObserver receives the single completion notification of an import.
type ImportObserver func(success bool)

// ImportReport counts what an import did.
type ImportReport struct {
	Imported int
	Skipped  int
}

// Importer loads a flat `name,group` dataset into the store. It does not
// check for existing data; callers consult HasReferenceData first.
type Importer struct {
	writer   ReferenceWriter
	observer ImportObserver
}

func NewImporter(writer ReferenceWriter, observer ImportObserver) *Importer {
	return &Importer{writer: writer, observer: observer}
}

// Import parses lines and writes every valid row in one batch.
func (i *Importer) Import(ctx context.Context, lines []string) (ImportReport, error) {
	report, err := i.importLines(ctx, lines)
	i.notify(err == nil)
	return report, err
}

// ImportAsync runs the import off the caller's goroutine. Once started the
// import ignores cancellation of ctx. The observer is the Future's completion
// handler, so it has run by the time Wait returns; callers cannot attach
// another one.
func (i *Importer) ImportAsync(ctx context.Context, lines []string) *Future[ImportReport] {
	ctx = context.WithoutCancel(ctx)
	future := Go(func() (ImportReport, error) {
		return i.importLines(ctx, lines)
	})
	_ = future.OnComplete(func(_ ImportReport, err error) {
		i.notify(err == nil)
	})
	return future
}

func (i *Importer) importLines(ctx context.Context, lines []string) (ImportReport, error) {
	pairs, skipped := ParseReferenceLines(lines)
	report := ImportReport{Skipped: skipped}

	if err := i.writer.BulkInsertReferenceEntries(ctx, pairs); err != nil {
		glog.Errorf("reference import failed: %v", err)
		return report, errors.Wrap(err, "import reference dataset")
	}

	report.Imported = len(pairs)
	glog.Infof("imported %d reference entries, skipped %d lines", report.Imported, report.Skipped)
	return report, nil
}

func (i *Importer) notify(success bool) {
	if i.observer != nil {
		i.observer(success)
	}
}

// ParseReferenceLines splits each line on its first comma and trims both
// fields. Lines without a comma or with an empty field are skipped and counted.
func ParseReferenceLines(lines []string) ([]domain.ReferencePair, int) {
	pairs := make([]domain.ReferencePair, 0, len(lines))
	skipped := 0

	for idx, line := range lines {
		if idx == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		name, group, ok := strings.Cut(line, ",")
		name = strings.TrimSpace(name)
		group = strings.TrimSpace(group)
		if !ok || name == "" || group == "" {
			skipped++
			glog.V(4).Infof("skipping dataset line %d: %q", idx+1, line)
			continue
		}

		pairs = append(pairs, domain.ReferencePair{Name: name, Group: group})
	}

	return pairs, skipped
}
