package models

import (
	"log"

	"github.com/qamisdata/inspections_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Inspection{}, &InspectionTeam{}, &TeamMember{}, &TeamSchool{}, &InspectionChecklist{},
		&School{}, &SchoolIdentification{},
		&SyncInfo{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
