package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
	}{
		{
			name:        "successful fetch",
			htmlContent: `<html><body><div id="main-data"></div></body></html>`,
			statusCode:  http.StatusOK,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusServiceUnavailable,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "rugby-fixtures") {
					t.Errorf("User-Agent = %q, should contain 'rugby-fixtures'", userAgent)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			body, err := NewHTTPFetcher("", 0).Fetch(context.Background(), server.URL)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, fixture.ErrNetwork), "want ErrNetwork, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.htmlContent, body)
		})
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPFetcher("", time.Second).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fixture.ErrNetwork))
}

func TestHTTPFetcher_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher("", 0).Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "want context.Canceled, got %v", err)
}

func TestNewHTTPFetcher(t *testing.T) {
	f := NewHTTPFetcher("", 0)

	if f.client == nil {
		t.Fatal("fetcher client is nil")
	}
	if f.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", f.client.Timeout, Timeout)
	}
	if f.userAgent != UserAgent {
		t.Errorf("user agent = %q, want %q", f.userAgent, UserAgent)
	}
}

func TestPageURL(t *testing.T) {
	got := PageURL(FixturesURLTemplate, "leinster", civiltime.Month{Year: 2024, Month: time.September})
	assert.Equal(t, "https://www.bbc.com/sport/rugby-union/teams/leinster/scores-fixtures/2024-09", got)
}

func TestNew(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	assert.Equal(t, FixturesURLTemplate, s.urlTemplate)
	assert.NotNil(t, s.fetcher)
	assert.NotNil(t, s.extractor)
	assert.Equal(t, civiltime.DefaultRegion, s.resolver.Location().String())

	_, err = New(Options{URLTemplate: "https://example.com/fixtures/"})
	assert.Error(t, err, "template without placeholder should be rejected")
}

func newPageServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestScraper_FetchMonth(t *testing.T) {
	server := newPageServer(t, map[string]string{
		"/teams/leinster/scores-fixtures/2024-09": loadFixturePage(t),
	})

	s, err := New(Options{URLTemplate: server.URL + "/teams/PLACEHOLDER/scores-fixtures/"})
	require.NoError(t, err)

	list, err := s.FetchMonth(context.Background(), "leinster", civiltime.Month{Year: 2024, Month: time.September})
	require.NoError(t, err)
	require.Equal(t, 3, list.Len())

	first := list.Fixtures()[0]
	assert.Equal(t, "Leinster vs Munster, 2024-09-14 14:00", first.Format("", time.UTC))
}

func TestScraper_FetchMonthErrors(t *testing.T) {
	server := newPageServer(t, map[string]string{
		"/teams/munster/scores-fixtures/2024-09": `<html><body><p>Page moved</p></body></html>`,
	})
	september := civiltime.Month{Year: 2024, Month: time.September}

	tests := []struct {
		name    string
		team    string
		opts    Options
		wantErr error
		wantLen int
	}{
		{
			name:    "missing page",
			team:    "connacht",
			wantErr: fixture.ErrNetwork,
		},
		{
			name:    "missing anchor",
			team:    "munster",
			wantErr: fixture.ErrStructureNotFound,
		},
		{
			name:    "missing anchor treated as empty month",
			team:    "munster",
			opts:    Options{MissingAnchorIsEmpty: true},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.URLTemplate = server.URL + "/teams/PLACEHOLDER/scores-fixtures/"
			s, err := New(opts)
			require.NoError(t, err)

			list, err := s.FetchMonth(context.Background(), tt.team, september)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantLen, list.Len())
				return
			}

			require.Error(t, err)
			assert.Nil(t, list)
			assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)

			var fe *fixture.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.team, fe.Team)
			assert.Equal(t, "2024-09", fe.Month)
			assert.Contains(t, fe.URL, "/teams/"+tt.team+"/scores-fixtures/2024-09")
		})
	}
}

type stubFetcher struct {
	body string
	urls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.body, nil
}

func TestScraper_FetchMonthUsesMonthYear(t *testing.T) {
	page := `
		<div id="main-data"><div>
			<h2>Saturday 4th January</h2><h3>URC</h3>
			<span class="emlpoi30">Connacht</span><span class="emlpoi30">Ulster</span>
			<time>15:00</time>
		</div></div>`
	fetcher := &stubFetcher{body: page}

	s, err := New(Options{Fetcher: fetcher})
	require.NoError(t, err)

	list, err := s.FetchMonth(context.Background(), "connacht", civiltime.Month{Year: 2025, Month: time.January})
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())

	assert.Equal(t, time.Date(2025, time.January, 4, 15, 0, 0, 0, time.UTC), list.Fixtures()[0].When)
	assert.Equal(t, []string{"https://www.bbc.com/sport/rugby-union/teams/connacht/scores-fixtures/2025-01"}, fetcher.urls)
}
