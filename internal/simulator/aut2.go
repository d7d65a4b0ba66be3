package simulator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndreyAkinshin/credo/internal/errors"
	"github.com/AndreyAkinshin/credo/internal/jobrunner"
	"github.com/AndreyAkinshin/credo/internal/result"
	"github.com/AndreyAkinshin/credo/internal/result/listing"
)

var (
	// aut2KeepExts are the per-model outputs copied to the output path.
	aut2KeepExts = []string{".listing", ".pdat", ".autogeners"}
	// aut2Scratch are the scratch files AUTOUGH2 leaves in its working
	// directory.
	aut2Scratch = []string{"gener.data", "lineq.data", "mesh.data", "table.data", "vers.data"}
)

// AUT2Config describes an AUTOUGH2 run.
type AUT2Config struct {
	Common
	// DatFile is the main input file. SaveFile and InconFile default to its
	// base name.
	DatFile   string
	SaveFile  string
	InconFile string
	// PositionsFile optionally holds element centres, one "x y [z]" line per
	// element in listing order.
	PositionsFile string
}

// AUT2Run runs AUTOUGH2 on a dat file and reads its listing.
type AUT2Run struct {
	cfg AUT2Config
}

var _ jobrunner.Run = (*AUT2Run)(nil)

// NewAUT2 creates an AUTOUGH2 run.
func NewAUT2(cfg AUT2Config) (*AUT2Run, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.DatFile == "" {
		return nil, errors.Configf("[%s] dat file is required", cfg.Name)
	}
	return &AUT2Run{cfg: cfg}, nil
}

func (r *AUT2Run) Name() string             { return r.cfg.Name }
func (r *AUT2Run) BasePath() string         { return r.cfg.BasePath }
func (r *AUT2Run) OutputPath() string       { return r.cfg.OutputPath }
func (r *AUT2Run) Params() jobrunner.Params { return r.cfg.Params }
func (r *AUT2Run) Kind() Kind               { return KindAUT2 }

// bases returns the dat, save and incon file names without extensions.
func (r *AUT2Run) bases() (dat, save, incon string) {
	dat = trimExt(r.cfg.DatFile)
	save, incon = dat, dat
	if r.cfg.SaveFile != "" {
		save = trimExt(r.cfg.SaveFile)
	}
	if r.cfg.InconFile != "" {
		incon = trimExt(r.cfg.InconFile)
	}
	return dat, save, incon
}

// RunFile is the name of the file fed to the simulator on stdin.
func (r *AUT2Run) RunFile() string {
	dat, _, _ := r.bases()
	return dat + "_" + filepath.Base(r.cfg.simulator(KindAUT2)) + ".in"
}

// Prepare writes the run file holding the save, incon and dat base names.
func (r *AUT2Run) Prepare() (string, error) {
	dat, save, incon := r.bases()
	content := strings.Join([]string{save, incon, dat}, "\n")
	runFile := r.RunFile()
	if err := os.WriteFile(r.cfg.path(runFile), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write run file: %w", err)
	}
	return fmt.Sprintf("%s < %s", r.cfg.simulator(KindAUT2), runFile), nil
}

// Cleanup copies the model outputs to the output path and removes scratch
// files.
func (r *AUT2Run) Cleanup() error {
	outDir := r.cfg.outputDir()
	if filepath.Clean(outDir) != filepath.Clean(r.cfg.BasePath) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		for _, name := range r.keepFiles() {
			src := r.cfg.path(name)
			if !isFile(src) {
				continue
			}
			if err := copyFile(src, filepath.Join(outDir, filepath.Base(name))); err != nil {
				return err
			}
		}
	}
	for _, name := range aut2Scratch {
		path := r.cfg.path(name)
		if !isFile(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove scratch file: %w", err)
		}
	}
	return nil
}

func (r *AUT2Run) keepFiles() []string {
	dat, _, _ := r.bases()
	files := make([]string, 0, len(aut2KeepExts)+3)
	for _, ext := range aut2KeepExts {
		files = append(files, dat+ext)
	}
	for _, f := range []string{r.cfg.DatFile, r.cfg.SaveFile, r.cfg.InconFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// ListingPath is where the listing is read from after Cleanup.
func (r *AUT2Run) ListingPath() string {
	dat, _, _ := r.bases()
	return filepath.Join(r.cfg.outputDir(), filepath.Base(dat)+".listing")
}

// Result opens the listing.
func (r *AUT2Run) Result() (result.ModelResult, error) {
	positions := ""
	if r.cfg.PositionsFile != "" {
		positions = r.cfg.path(r.cfg.PositionsFile)
	}
	lst, err := listing.Open(r.ListingPath(), positions)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", r.cfg.Name, err)
	}
	return r.cfg.accessor(lst)
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
