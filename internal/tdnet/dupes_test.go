package tdnet

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDuplicates_CleanRun(t *testing.T) {
	ls := newListingServer(t, map[int]string{
		1: buildListingHTML(0, []listingRow{row("10010", "a.zip"), row("10020", "b.zip")}),
		2: buildListingHTML(0, []listingRow{row("10030", "c.zip")}),
	})

	c := newTestCrawler(ls)
	report, err := c.CheckDuplicates(context.Background(), "20250819", 10)
	require.NoError(t, err)

	assert.Equal(t, 2, report.PagesScanned)
	assert.Equal(t, 3, report.TotalXBRL)
	assert.Equal(t, 3, report.UniqueXBRL)
	assert.Zero(t, report.TotalDuplicates)
	require.Len(t, report.Pages, 2)
	assert.Equal(t, 2, report.Pages[0].NewKeys)
	assert.Zero(t, report.Pages[0].Duplicates)
}

func TestCheckDuplicates_SharedKeyAcrossPages(t *testing.T) {
	shared := row("10020", "shared.zip")
	ls := newListingServer(t, map[int]string{
		1: buildListingHTML(0, []listingRow{row("10010", "a.zip"), shared}),
		2: buildListingHTML(0, []listingRow{shared, row("10030", "c.zip")}),
	})

	c := newTestCrawler(ls)
	report, err := c.CheckDuplicates(context.Background(), "20250819", 10)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalXBRL)
	assert.Equal(t, 3, report.UniqueXBRL)
	assert.Equal(t, 1, report.TotalDuplicates)

	page2 := report.Pages[1]
	assert.Equal(t, 1, page2.Duplicates)
	assert.Equal(t, 1, page2.NewKeys)
	require.Len(t, page2.DuplicateKeys, 1)
	assert.Contains(t, page2.DuplicateKeys[0], "shared.zip")
}

func TestCheckDuplicates_MaxPagesBound(t *testing.T) {
	pages := map[int]string{}
	for i := 1; i <= 6; i++ {
		pages[i] = buildListingHTML(0, []listingRow{row(fmt.Sprintf("1%04d", i), fmt.Sprintf("p%d.zip", i))})
	}
	ls := newListingServer(t, pages)

	c := newTestCrawler(ls)
	report, err := c.CheckDuplicates(context.Background(), "20250819", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, report.PagesScanned)
	assert.Equal(t, []int{1, 2, 3}, ls.requestedPages())
}

func TestCheckDuplicates_InvalidDate(t *testing.T) {
	ls := newListingServer(t, nil)
	c := newTestCrawler(ls)

	_, err := c.CheckDuplicates(context.Background(), "bad", 5)
	require.Error(t, err)
}
