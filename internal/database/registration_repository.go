package database

import (
	"time"

	"github.com/example/examportal/internal/idgen"
	"github.com/example/examportal/pkg/models"
)

// RegistrationsKey is the storage key of the registration collection
const RegistrationsKey = "testRegistrations"

// RegistrationIDPrefix prefixes generated registration IDs
const RegistrationIDPrefix = "REG"

// RegistrationRepository handles storage of test registrations. Like
// TestResultRepository it is append-only and assumes a single writer.
//
// One registration per student and test is a caller convention: check
// IsRegistered before Save. Save itself accepts duplicates.
type RegistrationRepository struct {
	store *KeyValueStore
	ids   *idgen.Generator
	now   func() time.Time
}

// NewRegistrationRepository creates a new repository instance
func NewRegistrationRepository(store *KeyValueStore) *RegistrationRepository {
	return &RegistrationRepository{
		store: store,
		ids:   idgen.New(),
		now:   time.Now,
	}
}

// GetAll returns all registrations in insertion order
func (r *RegistrationRepository) GetAll() []models.Registration {
	registrations := GetOr(r.store, RegistrationsKey, []models.Registration{})
	if registrations == nil {
		return []models.Registration{}
	}
	return registrations
}

// GetByUserID returns the registrations of a user
func (r *RegistrationRepository) GetByUserID(userID string) []models.Registration {
	return r.filter(func(reg models.Registration) bool {
		return reg.StudentID == userID
	})
}

// GetByTestName returns the registrations for a test
func (r *RegistrationRepository) GetByTestName(testName string) []models.Registration {
	return r.filter(func(reg models.Registration) bool {
		return reg.TestName == testName
	})
}

// Save appends a new registration with a generated ID and registration time.
// Nothing is written while the stored collection can't be read.
func (r *RegistrationRepository) Save(in models.RegistrationInput) (models.Registration, bool) {
	reg := models.NewRegistration(in, r.ids.Generate(RegistrationIDPrefix), stamp(r.now()))
	return reg, appendRecord(r.store, RegistrationsKey, reg)
}

// IsRegistered reports whether the user has a registration for testName.
// The comparison is exact and case-sensitive.
func (r *RegistrationRepository) IsRegistered(userID, testName string) bool {
	for _, reg := range r.GetByUserID(userID) {
		if reg.TestName == testName {
			return true
		}
	}
	return false
}

func (r *RegistrationRepository) filter(keep func(models.Registration) bool) []models.Registration {
	registrations := []models.Registration{}
	for _, reg := range r.GetAll() {
		if keep(reg) {
			registrations = append(registrations, reg)
		}
	}
	return registrations
}
