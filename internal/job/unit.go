package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maauso/wordclip/internal/config"
)

// ErrUnitNameInvalid is returned for unit names that are empty or would
// escape the configured folders.
var ErrUnitNameInvalid = errors.New("invalid unit name")

// Unit is one recording and its word lists, identified by a shared base name.
type Unit struct {
	// Name is the base name shared by all files of the unit.
	Name string `json:"name"`
	// AudioPath is the source recording.
	AudioPath string `json:"audio_path"`
	// WordsPath lists every word spoken in the recording, in order.
	WordsPath string `json:"words_path"`
	// KeepPath lists the words to keep, in output order.
	KeepPath string `json:"keep_path"`
	// OutputPath receives the reassembled track.
	OutputPath string `json:"output_path"`
}

// NewUnit resolves the files of unit name against paths.
func NewUnit(name string, paths config.Paths) (Unit, error) {
	if err := ValidateUnitName(name); err != nil {
		return Unit{}, err
	}
	return Unit{
		Name:       name,
		AudioPath:  filepath.Join(paths.OriginAudio, name+".mp3"),
		WordsPath:  filepath.Join(paths.OriginWords, name+".txt"),
		KeepPath:   filepath.Join(paths.Intermediate, "Keep_"+name+".txt"),
		OutputPath: filepath.Join(paths.Output, "Cutted_"+name+".mp3"),
	}, nil
}

// ValidateUnitName rejects names that are empty, contain a path separator
// or are a relative directory reference.
func ValidateUnitName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrUnitNameInvalid)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrUnitNameInvalid, name)
	case name == "." || name == ".." || strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q", ErrUnitNameInvalid, name)
	}
	return nil
}
