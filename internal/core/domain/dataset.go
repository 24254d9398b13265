package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CollectionPrefix prefixes every dataset collection name.
const CollectionPrefix = "ds_"

var datasetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateDatasetID rejects identifiers outside [A-Za-z0-9_-]+. Dataset ids
// become collection names, table rows and lock file names.
func ValidateDatasetID(id string) error {
	if !datasetIDPattern.MatchString(id) {
		return fmt.Errorf("%w: dataset id %q must match [A-Za-z0-9_-]+", ErrInvalidInput, id)
	}
	return nil
}

// Dataset is the isolation boundary for one tenant's knowledge base.
type Dataset struct {
	// ID is the opaque dataset identifier.
	ID string

	// TenantID identifies the owning tenant.
	TenantID string

	// Name is the human-readable name.
	Name string

	// CreatedAt is when the dataset was created.
	CreatedAt time.Time
}

// NewDataset creates a dataset with the given identifier.
func NewDataset(id, tenantID, name string) Dataset {
	return Dataset{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Collection returns the name of the dataset's vector collection.
func (d Dataset) Collection() string {
	return CollectionName(d.ID)
}

// CollectionName maps a dataset identifier to its collection name.
// The mapping is injective, so two datasets never share retrieval scope.
func CollectionName(datasetID string) string {
	return CollectionPrefix + datasetID
}

// DatasetIDFromCollection reverses CollectionName.
// It returns false when the name does not carry the dataset prefix.
func DatasetIDFromCollection(collection string) (string, bool) {
	if !strings.HasPrefix(collection, CollectionPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(collection, CollectionPrefix)
	return id, id != ""
}
