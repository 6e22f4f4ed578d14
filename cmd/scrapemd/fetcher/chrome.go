package fetcher

import (
	"os"
	"os/exec"

	"github.com/jmylchreest/scrapemd/internal/logger"
)

// chromeBinaryNames are Chrome/Chromium names and install paths, most
// specific first.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	// macOS paths
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	// Common Linux paths
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	// Windows paths
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the first Chrome/Chromium binary found, honouring
// the CHROME_PATH environment variable before the well-known names. It
// returns "" when none is found and leaves the lookup to chromedp.
func FindChromePath() string {
	return findChrome(os.Getenv("CHROME_PATH"), chromeBinaryNames, exec.LookPath)
}

func findChrome(override string, candidates []string, lookPath func(string) (string, error)) string {
	if override != "" {
		if path, err := lookPath(override); err == nil {
			logger.Debug("using Chrome from CHROME_PATH", "path", path)
			return path
		}
		logger.Warn("CHROME_PATH is not executable, searching defaults", "path", override)
	}

	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, dynamic rendering may fail")
	return ""
}
