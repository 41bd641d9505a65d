package seeds

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workforce_backend/internals/seeds/directory"
	"workforce_backend/internals/seeds/policies"
)

// RunAllSeeds loads demo data relative to dir (normally "internals/seeds").
func RunAllSeeds(db *gorm.DB, dir string) {
	//* Policies
	if err := policies.SeedPoliciesFromJSON(db, dir+"/policies/data_policies.json"); err != nil {
		zap.S().Errorf("❌ seed policies: %v", err)
	}

	//* Directory
	if err := directory.SeedDirectoryFromJSON(db, dir+"/directory/data_directory.json"); err != nil {
		zap.S().Errorf("❌ seed directory: %v", err)
	}
}
