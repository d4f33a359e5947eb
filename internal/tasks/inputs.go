package tasks

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/desertthunder/squash/internal/codec"
	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// LoadInputs reads files and directories into [models.InputFile] values.
//
// Directories are walked recursively in lexical order and hidden entries are skipped.
// MIME types are sniffed from content. Files the codec does not accept are returned with their type and size but
// no data, leaving the decision to drop them to the batch filter.
func LoadInputs(paths []string) ([]models.InputFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: at least one file or directory", shared.ErrMissingArgument)
	}

	var files []models.InputFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		if !info.IsDir() {
			f, err := loadInput(p)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			f, err := loadInput(path)
			if err != nil {
				return err
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}
	return files, nil
}

func loadInput(path string) (models.InputFile, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return models.InputFile{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	name := filepath.Base(path)
	if !codec.Accepts(mt.String()) {
		info, err := os.Stat(path)
		if err != nil {
			return models.InputFile{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return models.InputFile{Name: name, Size: info.Size(), MIMEType: mt.String()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.InputFile{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return models.NewInputFile(name, mt.String(), data), nil
}
