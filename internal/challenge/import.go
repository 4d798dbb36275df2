package challenge

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/interviewprep/internal/model"
)

// ErrInvalidFile wraps every problem found in a challenge file.
var ErrInvalidFile = errors.New("invalid challenge file")

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// ParseFile decodes and validates a JSON array of challenges.
func ParseFile(data []byte) ([]model.ChallengeImport, error) {
	var items []model.ChallengeImport
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no challenges", ErrInvalidFile)
	}
	for i, it := range items {
		if err := getValidator().Struct(it); err != nil {
			return nil, fmt.Errorf("%w: item %d (%q): %v", ErrInvalidFile, i, it.Title, err)
		}
	}
	return items, nil
}

// FileHash returns the hex SHA-256 of a challenge file, used to skip files
// that were already imported.
func FileHash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
