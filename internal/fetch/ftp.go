package fetch

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MirrorFetcher wraps a primary HTTP fetcher with an anonymous-FTP fallback.
// The Census Bureau publishes TIGER archives on both www2.census.gov and the
// ftp2.census.gov mirror; when the web host throttles or fails, the mirror
// usually still serves.
type MirrorFetcher struct {
	primary Fetcher
	timeout time.Duration
}

// NewMirrorFetcher wraps primary with the FTP fallback.
func NewMirrorFetcher(primary Fetcher) *MirrorFetcher {
	return &MirrorFetcher{primary: primary, timeout: 60 * time.Second}
}

// Download tries the primary fetcher first, then the ftp:// form of the same
// path on the Census mirror.
func (m *MirrorFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	body, err := m.primary.Download(ctx, rawURL)
	if err == nil {
		return body, nil
	}

	mirrorURL, ok := censusMirrorURL(rawURL)
	if !ok {
		return nil, err
	}
	zap.L().Warn("fetch: primary download failed, trying census ftp mirror",
		zap.String("url", rawURL), zap.Error(err))

	body, ftpErr := m.downloadFTP(ctx, mirrorURL)
	if ftpErr != nil {
		return nil, eris.Wrapf(err, "fetch: mirror also failed (%v)", ftpErr)
	}
	return body, nil
}

// DownloadToFile is Download written through to a local file.
func (m *MirrorFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	return downloadToFile(ctx, m, rawURL, path)
}

// censusMirrorURL rewrites a www2.census.gov HTTP URL to its ftp2.census.gov
// equivalent. Non-census URLs have no mirror.
func censusMirrorURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "www2.census.gov" {
		return "", false
	}
	u.Scheme = "ftp"
	u.Host = "ftp2.census.gov"
	return u.String(), true
}

type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) { return r.resp.Read(p) }

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "fetch: close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "fetch: quit ftp connection")
	}
	return nil
}

func (m *MirrorFetcher) downloadFTP(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	u, err := url.Parse(ftpURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: parse ftp url")
	}
	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(m.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: ftp dial")
	}
	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "fetch: ftp login")
	}
	resp, err := conn.Retr(u.Path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "fetch: ftp retrieve")
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}
