package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/edu-verify/config"
)

// Seeds a verified council member and a demo project they lead, so the council
// endpoints and project counts have data on a fresh database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	platformID := flag.String("platform-id", "100000000000000001", "platform id of the council member")
	name := flag.String("name", "Council Admin", "display name")
	email := flag.String("email", "council@school.edu", "verified email")
	project := flag.String("project", "Club Website", "demo project led by the member")
	flag.Parse()

	addr := strings.ToLower(strings.TrimSpace(*email))
	if !strings.HasSuffix(addr, cfg.EmailDomainSuffix) {
		log.Fatalf("email must end with %s", cfg.EmailDomainSuffix)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	var id string
	err = db.QueryRow(`
		INSERT INTO identities (platform_id, display_name, email, email_verified, verified_at, is_council_member)
		VALUES ($1, $2, $3, true, now(), true)
		ON CONFLICT (platform_id) DO UPDATE
			SET display_name = EXCLUDED.display_name,
			    is_council_member = true,
			    updated_at = now()
		RETURNING id::text
	`, *platformID, *name, addr).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed identity: %v", err)
	}
	fmt.Printf("seeded council member: id=%s platform_id=%s email=%s\n", id, *platformID, addr)

	var projectID int64
	if err := db.QueryRow(`
		INSERT INTO projects (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, *project).Scan(&projectID); err != nil {
		log.Fatalf("failed to upsert project: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO project_members (project_id, identity_id, role)
		VALUES ($1, $2, 'lead'), ($1, $2, 'member')
		ON CONFLICT DO NOTHING
	`, projectID, id); err != nil {
		log.Fatalf("failed to assign project: %v", err)
	}
	fmt.Printf("assigned project %q (id=%d) to seeded member\n", *project, projectID)
}
