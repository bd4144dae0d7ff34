package tdnet

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nemusake/tdnet-downloader/internal/fetcher"
)

// Downloader fetches XBRL filing archives and unpacks them under a
// per-date directory, one subdirectory per filing.
type Downloader struct {
	fetcher fetcher.Fetcher
	limiter *rate.Limiter
}

// NewDownloader creates a Downloader that spaces requests by delay.
func NewDownloader(f fetcher.Fetcher, delay time.Duration) *Downloader {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Downloader{
		fetcher: f,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// DownloadResult records the outcome for one filing. ExtractErr is set,
// and the archive retained on disk, when the package cannot be unpacked.
type DownloadResult struct {
	Disclosure  Disclosure `json:"disclosure"`
	ArchivePath string     `json:"archive_path"`
	Bytes       int64      `json:"bytes"`
	ExtractDir  string     `json:"extract_dir,omitempty"`
	Files       int        `json:"files"`
	ExtractErr  string     `json:"extract_err,omitempty"`
}

// DownloadSummary aggregates a batch download.
type DownloadSummary struct {
	Requested     int              `json:"requested"`
	Succeeded     int              `json:"succeeded"`
	Failed        int              `json:"failed"`
	ExtractFailed int              `json:"extract_failed"`
	Results       []DownloadResult `json:"results"`
}

// SafeName strips characters that cannot appear in a directory name,
// keeping letters, digits, spaces, dashes and underscores.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// FilingDirName returns the directory name a filing unpacks into:
// "{code}_{sanitized company name}", or the archive basename without its
// extension when either identity field is missing.
func FilingDirName(d Disclosure) string {
	base := archiveBase(d.XBRLURL)
	if d.Code != "" && d.Name != "" {
		return d.Code + "_" + SafeName(d.Name)
	}
	return strings.TrimSuffix(base, ".zip")
}

func archiveBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}

// DownloadFiling downloads one filing's XBRL archive into saveDir and
// unpacks it. A corrupt archive is kept on disk for inspection and
// reported via ExtractErr rather than failing the filing outright.
func (dl *Downloader) DownloadFiling(ctx context.Context, d Disclosure, saveDir string) (*DownloadResult, error) {
	if !d.HasXBRL() {
		return nil, eris.Errorf("download: disclosure %s has no XBRL package", d.Code)
	}
	if err := dl.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "download: rate wait")
	}
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "download: create save dir")
	}

	base := archiveBase(d.XBRLURL)
	fileName := base
	if d.Code != "" && d.Name != "" {
		fileName = d.Code + "_" + SafeName(d.Name) + "_" + base
	}
	archivePath := filepath.Join(saveDir, fileName)

	n, err := dl.fetcher.DownloadToFile(ctx, d.XBRLURL, archivePath)
	if err != nil {
		return nil, eris.Wrapf(err, "download: %s", d.XBRLURL)
	}

	res := &DownloadResult{
		Disclosure:  d,
		ArchivePath: archivePath,
		Bytes:       n,
	}

	if strings.HasSuffix(strings.ToLower(base), ".zip") {
		extractDir := filepath.Join(saveDir, FilingDirName(d))
		files, err := fetcher.ExtractZIP(archivePath, extractDir)
		if err != nil {
			zap.L().Warn("archive extraction failed, artifact retained",
				zap.String("archive", archivePath),
				zap.Error(err),
			)
			res.ExtractErr = err.Error()
			return res, nil
		}
		res.ExtractDir = extractDir
		res.Files = len(files)
	}

	zap.L().Info("filing downloaded",
		zap.String("code", d.Code),
		zap.String("archive", archivePath),
		zap.Int64("bytes", n),
		zap.Int("files", res.Files),
	)

	return res, nil
}

// DownloadAll downloads up to limit filings (all when limit <= 0).
// Per-filing failures are counted and logged; only cancellation stops
// the batch.
func (dl *Downloader) DownloadAll(ctx context.Context, records []Disclosure, saveDir string, limit int) (*DownloadSummary, error) {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	sum := &DownloadSummary{Requested: len(records)}
	for _, d := range records {
		res, err := dl.DownloadFiling(ctx, d, saveDir)
		if err != nil {
			if ctx.Err() != nil {
				return sum, eris.Wrap(ctx.Err(), "download: cancelled")
			}
			zap.L().Warn("filing download failed",
				zap.String("code", d.Code),
				zap.String("name", d.Name),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}
		sum.Succeeded++
		if res.ExtractErr != "" {
			sum.ExtractFailed++
		}
		sum.Results = append(sum.Results, *res)
	}

	return sum, nil
}
