package search_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/amosWeiskopf/linkscout/pkg/search"
	"github.com/amosWeiskopf/linkscout/pkg/search/mocks"
)

func pageOf(start, n int) []string {
	links := make([]string, 0, n)
	for i := 0; i < n; i++ {
		links = append(links, fmt.Sprintf("https://result.test/%d", start+i))
	}
	return links
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		maxResults int
		want       int
	}{
		{-5, 0},
		{0, 0},
		{9, 0},
		{10, 1},
		{25, 2},
		{99, 9},
		{100, 10},
		{101, 10},
		{10000, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.maxResults), func(t *testing.T) {
			assert.Equal(t, tt.want, search.PageCount(tt.maxResults))
		})
	}
}

func TestPaginateIssuesOneRequestPerFullPage(t *testing.T) {
	for maxResults := 0; maxResults <= 130; maxResults++ {
		maxResults := maxResults
		t.Run(fmt.Sprint(maxResults), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			searcher := mocks.NewMockPageSearcher(ctrl)

			want := search.PageCount(maxResults)
			searcher.EXPECT().
				SearchPage(gomock.Any(), "widgets", gomock.Any(), search.PageSize).
				DoAndReturn(func(_ context.Context, _ string, start, num int) ([]string, error) {
					return pageOf(start, num), nil
				}).
				Times(want)

			p := search.NewPaginator(searcher, nil)
			urls, err := p.Paginate(context.Background(), "widgets", maxResults)
			require.NoError(t, err)
			assert.Len(t, urls, want*search.PageSize)
			assert.LessOrEqual(t, len(urls), search.MaxResults)
		})
	}
}

func TestPaginateWidgetsScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockPageSearcher(ctrl)

	gomock.InOrder(
		searcher.EXPECT().SearchPage(gomock.Any(), "widgets", 1, 10).Return(pageOf(1, 10), nil),
		searcher.EXPECT().SearchPage(gomock.Any(), "widgets", 11, 10).Return(pageOf(11, 7), nil),
	)

	p := search.NewPaginator(searcher, nil)
	urls, err := p.Paginate(context.Background(), "widgets", 25)
	require.NoError(t, err)

	assert.Len(t, urls, 17)
	assert.Equal(t, "https://result.test/1", urls[0])
	assert.Equal(t, "https://result.test/11", urls[10])
	assert.Equal(t, "https://result.test/17", urls[16])
}

func TestPaginateTruncatesOversizedPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockPageSearcher(ctrl)
	searcher.EXPECT().SearchPage(gomock.Any(), "widgets", 1, 10).Return(pageOf(1, 15), nil)

	urls, err := search.NewPaginator(searcher, nil).Paginate(context.Background(), "widgets", 10)
	require.NoError(t, err)
	assert.Len(t, urls, 10)
}

func TestPaginateStopsOnError(t *testing.T) {
	tests := []struct {
		name    string
		failErr error
	}{
		{name: "quota", failErr: search.ErrQuotaExceeded},
		{name: "authentication", failErr: search.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			searcher := mocks.NewMockPageSearcher(ctrl)

			gomock.InOrder(
				searcher.EXPECT().SearchPage(gomock.Any(), "widgets", 1, 10).Return(pageOf(1, 10), nil),
				searcher.EXPECT().SearchPage(gomock.Any(), "widgets", 11, 10).Return(nil, tt.failErr),
			)

			urls, err := search.NewPaginator(searcher, nil).Paginate(context.Background(), "widgets", 50)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.failErr)
			assert.Nil(t, urls)
		})
	}
}

func TestPaginateEmptyQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockPageSearcher(ctrl)

	_, err := search.NewPaginator(searcher, nil).Paginate(context.Background(), "   ", 50)
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
}
