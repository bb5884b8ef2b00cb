package payment

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
)

/*
Opener puts a payment page in front of the user. Open returns a handle
that closes the page again, for openers that are able to.
*/
type Opener interface {
	Open(url string) (io.Closer, error)
}

/*
SystemOpener hands the URL to the operating system's default browser. The
spawned browser lives its own life, so the returned closer is a no-op.
*/
type SystemOpener struct{}

func (SystemOpener) Open(url string) (io.Closer, error) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}

	return nopCloser{}, nil
}

/*
AnnounceOpener never launches anything; it logs the URL for the user to
open by hand. Useful over SSH and in terminals without a display.
*/
type AnnounceOpener struct{}

func (AnnounceOpener) Open(url string) (io.Closer, error) {
	log.Info("open the payment page in your browser", "url", url)

	return nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
