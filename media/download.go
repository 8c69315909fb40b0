package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
)

// Downloader resolves a remote URL to a local file before probing.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// YtDlpDownloader shells out to yt-dlp, which handles both streaming
// sites and plain file URLs. When the binary is absent it falls back to
// a direct HTTP fetch.
type YtDlpDownloader struct {
	runner Runner
	binary string
}

func NewDownloader(runner Runner) *YtDlpDownloader {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &YtDlpDownloader{runner: runner, binary: "yt-dlp"}
}

func (d *YtDlpDownloader) Download(ctx context.Context, url, dest string) error {
	_, err := d.runner.Run(ctx, d.binary, "-f", "best[ext=mp4]", "-o", dest, url)
	if err == nil {
		return nil
	}
	if !errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return fetchHTTP(ctx, url, dest)
}

func fetchHTTP(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return nil
}
