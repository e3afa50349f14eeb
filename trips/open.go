package trips

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gogpu/flowarc"
)

// Open returns a reader for a local path or an http(s) URL.
// The caller must close it.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("trips: open: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("trips: fetch: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trips: fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("trips: fetch %s: %s", source, resp.Status)
	}

	flowarc.Logger().Debug("trips: fetching", "url", source, "length", resp.ContentLength)
	return resp.Body, nil
}

// Load opens source and reads trips from it.
func Load(ctx context.Context, source string, opts ...Option) (*TripSet, error) {
	rc, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadTrips(rc, opts...)
}

// LoadStations opens source and reads stations from it.
func LoadStations(ctx context.Context, source string, opts ...Option) ([]Station, error) {
	rc, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	stations, _, err := ReadStations(rc, opts...)
	return stations, err
}
