package file

import (
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-getter"
	"github.com/hashicorp/go-getter/helper/url"
	"github.com/wagoodman/go-progress"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/internal/stringutil"
	"github.com/vulncert/vulncert/internal/version"
)

var (
	archiveExtensions   = getterDecompressorNames()
	ErrNonArchiveSource = fmt.Errorf("non-archive sources are not supported for directory destinations")
)

type Getter interface {
	// GetToDir downloads the resource at the src URL into the given directory. The
	// directory must already exist and the remote resource must be an archive the
	// getter knows how to unpack (e.g. a .zip).
	GetToDir(dst, src string, monitor ...*progress.Manual) error
}

type HashiGoGetter struct {
	httpGetter getter.HttpGetter
}

// NewGetter returns a go-getter backed Getter that identifies itself with the
// application's user agent. A nil client falls back to go-getter's own HTTP defaults.
func NewGetter(httpClient *http.Client) *HashiGoGetter {
	return &HashiGoGetter{
		httpGetter: getter.HttpGetter{
			Client: httpClient,
			Header: http.Header{
				"User-Agent": []string{fmt.Sprintf("%v %v", internal.ApplicationName, version.FromBuild().Version)},
			},
		},
	}
}

func (g HashiGoGetter) GetToDir(dst, src string, monitors ...*progress.Manual) error {
	if err := validateHTTPSource(src); err != nil {
		return err
	}
	if len(monitors) > 1 {
		return fmt.Errorf("multiple monitors provided, which is not allowed")
	}

	return getterClient(dst, src, g.httpGetter, monitors).Get()
}

// validateHTTPSource rejects http(s) sources that do not point at an archive; every other
// scheme has its own getter with its own rules.
func validateHTTPSource(src string) error {
	if !stringutil.HasAnyOfPrefixes(src, "http://", "https://") {
		return nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("bad URL provided %q: %w", src, err)
	}
	if !stringutil.HasAnyOfSuffixes(u.Path, archiveExtensions...) {
		return ErrNonArchiveSource
	}
	return nil
}

func getterClient(dst, src string, httpGetter getter.HttpGetter, monitors []*progress.Manual) *getter.Client {
	return &getter.Client{
		Src: src,
		Dst: dst,
		Dir: true,
		Getters: map[string]getter.Getter{
			// the custom http getter carries the user agent and injected client; the
			// rest are go-getter's stock set
			"http":  &httpGetter,
			"https": &httpGetter,
			"file":  new(getter.FileGetter),
			"git":   new(getter.GitGetter),
			"gcs":   new(getter.GCSGetter),
			"hg":    new(getter.HgGetter),
			"s3":    new(getter.S3Getter),
		},
		Options: clientOptions(monitors),
	}
}

func clientOptions(monitors []*progress.Manual) []getter.ClientOption {
	var options []getter.ClientOption
	for _, monitor := range monitors {
		options = append(options, getter.WithProgress(&progressAdapter{monitor: monitor}))
	}
	return options
}

type readCloser struct {
	progress.Reader
}

func (c *readCloser) Close() error { return nil }

// progressAdapter bridges go-getter's progress tracking onto a manual progress monitor.
type progressAdapter struct {
	monitor *progress.Manual
}

func (a *progressAdapter) TrackProgress(_ string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	a.monitor.N = currentSize
	a.monitor.Total = totalSize
	return &readCloser{
		Reader: *progress.NewProxyReader(stream, a.monitor),
	}
}

func getterDecompressorNames() (names []string) {
	for name := range getter.Decompressors {
		names = append(names, name)
	}
	return names
}
