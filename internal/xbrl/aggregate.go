package xbrl

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoDocument is returned when a filing directory has no summary
// document to extract from.
var ErrNoDocument = eris.New("xbrl: no summary document")

// Filing layout inside an extracted archive.
const (
	summarySubdir    = "XBRLData/Summary"
	attachmentSubdir = "XBRLData/Attachment"
	summaryPattern   = "*-ixbrl.htm"
	balancePattern   = "*acbs01*ixbrl.htm"
)

// ExtractFiling assembles the profile for one extracted filing
// directory: the first summary document, then the curated attachment
// balance-sheet detail and the attachment namespace sweep over every
// attachment file, merged first-wins. Attachment files that cannot be
// read or parsed are logged and skipped; a missing summary document
// is ErrNoDocument.
func ExtractFiling(dir string) (Profile, error) {
	summaries, err := filepath.Glob(filepath.Join(dir, summarySubdir, summaryPattern))
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: scan summary dir %s", dir)
	}
	if len(summaries) == 0 {
		return nil, eris.Wrapf(ErrNoDocument, "filing %s", dir)
	}

	doc, err := parseFile(summaries[0])
	if err != nil {
		return nil, err
	}
	summary := ExtractSummary(doc)

	sections := []map[string]Value{summary}
	attachDir := filepath.Join(dir, attachmentSubdir)
	if _, statErr := os.Stat(attachDir); statErr == nil {
		sections = append(sections, extractAttachments(attachDir)...)
	}

	return MergeFirstWins(sections...), nil
}

// extractAttachments returns the curated balance-sheet section
// followed by one namespace sweep per attachment file, in sorted file
// order.
func extractAttachments(attachDir string) []map[string]Value {
	var sections []map[string]Value

	balances, _ := filepath.Glob(filepath.Join(attachDir, balancePattern))
	if len(balances) > 0 {
		if doc, err := parseFile(balances[0]); err != nil {
			zap.L().Warn("xbrl: attachment balance sheet unreadable",
				zap.String("file", balances[0]),
				zap.Error(err),
			)
		} else {
			sections = append(sections, ExtractSection(doc, AttachmentFields))
		}
	}

	files, _ := filepath.Glob(filepath.Join(attachDir, "*.htm"))
	for _, file := range files {
		doc, err := parseFile(file)
		if err != nil {
			zap.L().Warn("xbrl: attachment file unreadable",
				zap.String("file", file),
				zap.Error(err),
			)
			continue
		}
		sections = append(sections, SweepAttachment(doc))
	}
	return sections
}

func parseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: open %s", path)
	}
	defer f.Close()
	return ParseDocument(f)
}

// BatchStats summarizes one directory extraction run.
type BatchStats struct {
	Filings    int      `json:"filings"`
	Extracted  int      `json:"extracted"`
	NoDocument int      `json:"no_document"`
	NoCompany  int      `json:"no_company"`
	Failed     int      `json:"failed"`
	Skipped    []string `json:"skipped,omitempty"`
}

// Extractor walks a date directory of extracted filings and produces
// one profile per filing.
type Extractor struct {
	workers int
}

// NewExtractor bounds concurrent filing extraction at workers.
func NewExtractor(workers int) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{workers: workers}
}

// ExtractDirectory extracts every filing directory under dir and
// returns profiles ordered by filing directory name. Filings without
// a summary document or a resolvable company name are counted and
// skipped, never fatal; only cancellation or an unreadable root
// directory ends the run early.
func (e *Extractor) ExtractDirectory(ctx context.Context, dir string) ([]Profile, *BatchStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "xbrl: read directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	profiles := make([]Profile, len(names))
	failures := make([]error, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := ExtractFiling(filepath.Join(dir, name))
			if err != nil {
				failures[i] = err
				return nil
			}
			profiles[i] = p
			return nil
		})
	}
	waitErr := g.Wait()

	stats := &BatchStats{Filings: len(names)}
	out := make([]Profile, 0, len(names))
	for i, name := range names {
		switch {
		case failures[i] != nil && errors.Is(failures[i], ErrNoDocument):
			stats.NoDocument++
			stats.Skipped = append(stats.Skipped, name)
			zap.L().Warn("xbrl: filing has no summary document", zap.String("filing", name))
		case failures[i] != nil:
			stats.Failed++
			stats.Skipped = append(stats.Skipped, name)
			zap.L().Warn("xbrl: filing extraction failed",
				zap.String("filing", name),
				zap.Error(failures[i]),
			)
		case profiles[i] == nil:
			// Cancelled before this filing was reached.
		case profiles[i].CompanyName() == "":
			stats.NoCompany++
			stats.Skipped = append(stats.Skipped, name)
			zap.L().Warn("xbrl: filing has no resolvable company name", zap.String("filing", name))
		default:
			stats.Extracted++
			out = append(out, profiles[i])
		}
	}

	zap.L().Info("xbrl: directory extraction complete",
		zap.String("dir", dir),
		zap.Int("filings", stats.Filings),
		zap.Int("extracted", stats.Extracted),
		zap.Int("no_document", stats.NoDocument),
		zap.Int("no_company", stats.NoCompany),
		zap.Int("failed", stats.Failed),
	)

	if waitErr != nil {
		return out, stats, eris.Wrap(waitErr, "xbrl: extraction cancelled")
	}
	return out, stats, nil
}
