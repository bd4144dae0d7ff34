package tdnet

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemusake/tdnet-downloader/internal/fetcher"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestDownloader() *Downloader {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
	return NewDownloader(f, 0)
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"トヨタ自動車", "トヨタ自動車"},
		{"株式会社サンプル", "株式会社サンプル"},
		{"ＡＢＣホールディングス", "ＡＢＣホールディングス"},
		{"Ａ＆Ｂ商事", "ＡＢ商事"},
		{"X/Y:Z*Co", "XYZCo"},
		{"Name with spaces ", "Name with spaces"},
		{"under_score-dash", "under_score-dash"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeName(tt.in), "SafeName(%q)", tt.in)
	}
}

func TestFilingDirName(t *testing.T) {
	d := Disclosure{
		Code:    "12340",
		Name:    "株式会社サンプル",
		XBRLURL: "https://www.release.tdnet.info/inbs/081220250819512345.zip",
	}
	assert.Equal(t, "12340_株式会社サンプル", FilingDirName(d))

	anonymous := Disclosure{XBRLURL: "https://www.release.tdnet.info/inbs/081220250819512345.zip"}
	assert.Equal(t, "081220250819512345", FilingDirName(anonymous))
}

func TestDownloadFiling(t *testing.T) {
	archive := zipBytes(t, map[string]string{
		"XBRLData/Summary/report-ixbrl.htm": "<html/>",
		"XBRLData/Attachment/detail.htm":    "<html/>",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	d := Disclosure{
		Code:    "12340",
		Name:    "株式会社サンプル",
		XBRLURL: srv.URL + "/081220250819512345.zip",
	}

	dl := newTestDownloader()
	saveDir := t.TempDir()
	res, err := dl.DownloadFiling(context.Background(), d, saveDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(saveDir, "12340_株式会社サンプル_081220250819512345.zip"), res.ArchivePath)
	assert.Equal(t, filepath.Join(saveDir, "12340_株式会社サンプル"), res.ExtractDir)
	assert.Equal(t, 2, res.Files)
	assert.Empty(t, res.ExtractErr)

	_, err = os.Stat(res.ArchivePath)
	require.NoError(t, err, "archive is kept after extraction")
	_, err = os.Stat(filepath.Join(res.ExtractDir, "XBRLData", "Summary", "report-ixbrl.htm"))
	require.NoError(t, err)
}

func TestDownloadFiling_CorruptArchiveRetained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a zip archive"))
	}))
	defer srv.Close()

	d := Disclosure{
		Code:    "12340",
		Name:    "壊れた社",
		XBRLURL: srv.URL + "/broken.zip",
	}

	dl := newTestDownloader()
	saveDir := t.TempDir()
	res, err := dl.DownloadFiling(context.Background(), d, saveDir)
	require.NoError(t, err, "a corrupt archive marks the filing, it does not fail it")

	assert.NotEmpty(t, res.ExtractErr)
	assert.Empty(t, res.ExtractDir)

	// The artifact stays on disk for inspection.
	data, err := os.ReadFile(res.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, "this is not a zip archive", string(data))
}

func TestDownloadFiling_NoXBRL(t *testing.T) {
	dl := newTestDownloader()
	_, err := dl.DownloadFiling(context.Background(), Disclosure{Code: "12340"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no XBRL package")
}

func TestDownloadAll_LimitAndFailures(t *testing.T) {
	archive := zipBytes(t, map[string]string{"XBRLData/Summary/a-ixbrl.htm": "<html/>"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	defer srv.Close()

	records := []Disclosure{
		{Code: "10010", Name: "A社", XBRLURL: srv.URL + "/a.zip"},
		{Code: "10020", Name: "B社", XBRLURL: srv.URL + "/missing.zip"},
		{Code: "10030", Name: "C社", XBRLURL: srv.URL + "/c.zip"},
		{Code: "10040", Name: "D社", XBRLURL: srv.URL + "/d.zip"},
	}

	dl := newTestDownloader()
	sum, err := dl.DownloadAll(context.Background(), records, t.TempDir(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Requested, "limit trims the batch")
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed, "a missing archive fails that filing only")
	assert.Len(t, sum.Results, 2)
}

func TestDownloadAll_Cancelled(t *testing.T) {
	dl := newTestDownloader()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []Disclosure{{Code: "10010", Name: "A社", XBRLURL: "http://127.0.0.1:1/a.zip"}}
	_, err := dl.DownloadAll(ctx, records, t.TempDir(), 0)
	require.Error(t, err)
}
