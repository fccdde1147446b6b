package paths

import (
	"os"
	"path/filepath"
)

const (
	AppDirName      = "splash"
	ConfigFileName  = "splash-config.json"
	HistoryFileName = "history.db"
	DirPerm         = 0755
	FilePerm        = 0644
)

// ImageSetDir is the splash image set inside a Capacitor iOS project,
// relative to the project root.
var ImageSetDir = filepath.Join("ios", "App", "App", "Assets.xcassets", "Splash.imageset")

// projectMarkers identify the root of a Capacitor/npm project.
var projectMarkers = []string{
	"capacitor.config.ts",
	"capacitor.config.json",
	"package.json",
}

// WriteFile writes data to path via a temporary file + rename so a reader
// never sees a half-written file. Unlike os.WriteFile it does not create
// missing parent directories: the write fails if the directory is absent.
func WriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ProjectRoot walks up from start looking for a project marker file and
// returns the first directory that has one. Falls back to start.
func ProjectRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for {
		for _, m := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// OutputDir returns the splash image set directory under root.
func OutputDir(root string) string {
	return filepath.Join(root, ImageSetDir)
}

// DataDir returns the platform-specific data directory for splash:
//   - Windows: %APPDATA%\splash
//   - Unix:    ~/.config/splash
//
// Falls back to os.TempDir()/splash if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}
