package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := openGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			tables := []string{
				"material_request_items",
				"material_requests",
				"department_approvers",
				"users",
				"departments",
				"business_units",
			}
			for _, table := range tables {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		unitID := seedBusinessUnit(db, "MAIN", "Main Business Unit")
		opsID := seedDepartment(db, unitID, "OPS", "Operations")
		maintID := seedDepartment(db, unitID, "MAINT", "Maintenance")

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		seedUser(db, "admin@mail.com", "Ada", "Admin", "ADMIN", string(hash), nil)
		seedUser(db, "manager@mail.com", "Mara", "Manager", "MANAGER", string(hash), nil)
		recID := seedUser(db, "rec.approver@mail.com", "Rei", "Reyes", "STAFF", string(hash), &opsID)
		finalID := seedUser(db, "final.approver@mail.com", "Fin", "Flores", "MANAGER", string(hash), &opsID)
		seedUser(db, "staff@mail.com", "Sam", "Santos", "STAFF", string(hash), &opsID)
		seedUser(db, "purchaser@mail.com", "Pau", "Perez", "PURCHASER", string(hash), nil)
		seedUser(db, "stockroom@mail.com", "Stella", "Cruz", "STOCKROOM", string(hash), &maintID)

		seedApprover(db, opsID, recID, "RECOMMENDING")
		seedApprover(db, opsID, finalID, "FINAL")

		fmt.Println("Seed data loaded")
	},
}

func seedBusinessUnit(db *gorm.DB, code, name string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM business_units WHERE code = ?", code).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec(
		"INSERT INTO business_units (code, name, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())",
		code, name).Error; err != nil {
		log.Fatalf("failed to insert business unit %s: %v", code, err)
	}
	if err := db.Raw("SELECT id FROM business_units WHERE code = ?", code).Row().Scan(&id); err != nil {
		log.Fatalf("failed to look up business unit %s: %v", code, err)
	}
	fmt.Println("Seeded business unit:", code)
	return id
}

func seedDepartment(db *gorm.DB, unitID int64, code, name string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM departments WHERE code = ?", code).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec(
		"INSERT INTO departments (code, name, business_unit_id, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
		code, name, unitID).Error; err != nil {
		log.Fatalf("failed to insert department %s: %v", code, err)
	}
	if err := db.Raw("SELECT id FROM departments WHERE code = ?", code).Row().Scan(&id); err != nil {
		log.Fatalf("failed to look up department %s: %v", code, err)
	}
	fmt.Println("Seeded department:", code)
	return id
}

func seedUser(db *gorm.DB, email, firstName, lastName, role, passwordHash string, departmentID *int64) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec(
		"INSERT INTO users (first_name, last_name, email, password_hash, role, mrs_department_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
		firstName, lastName, email, passwordHash, role, departmentID).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("failed to look up user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
	return id
}

func seedApprover(db *gorm.DB, departmentID, userID int64, approverType string) {
	var exists int
	if err := db.Raw(
		"SELECT 1 FROM department_approvers WHERE department_id = ? AND user_id = ? AND approver_type = ?",
		departmentID, userID, approverType).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec(
		"INSERT INTO department_approvers (department_id, user_id, approver_type, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
		departmentID, userID, approverType).Error; err != nil {
		log.Fatalf("failed to insert %s approver for department %d: %v", approverType, departmentID, err)
	}
	fmt.Printf("Seeded %s approver for department %d\n", approverType, departmentID)
}
