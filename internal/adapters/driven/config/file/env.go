package file

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileName is the dotenv file looked up in each directory.
const EnvFileName = ".env"

// LoadEnvFiles loads .env from each directory in order. Variables already
// set in the environment win, and so do files loaded earlier. Missing files
// are skipped and the loaded paths are returned.
func LoadEnvFiles(dirs ...string) ([]string, error) {
	var loaded []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, EnvFileName)
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
