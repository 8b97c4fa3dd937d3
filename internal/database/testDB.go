package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "HireSight-backend/internal/model"
	"HireSight-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & profiles
var (
	TestAdminUser      m.User
	TestUserCandidate1 m.User
	TestUserCandidate2 m.User
	TestUserRecruiter1 m.User
	TestUserRecruiter2 m.User
	TestCandidate1     m.CandidateUser
	TestCandidate2     m.CandidateUser
	TestRecruiter1     m.RecruiterUser
	TestRecruiter2     m.RecruiterUser

	// Exported plain password shared by every seeded user
	TestSeedPassword = "SeedPass123!"

	// Exported seeded job postings. TestJobPost1 carries one scored and one
	// unscored application; TestJobPost2 has none.
	TestJobPost1 m.JobPosting
	TestJobPost2 m.JobPosting
	TestJobPost3 m.JobPosting
)

// GetTestDB starts a PostgreSQL test container and returns a teardown
// function, the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample candidate and recruiter users plus job
// postings with embedded applications, if the database is empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore the admin user created during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		username string
		role     string
	}{
		{"candidate_user_1", m.RoleCandidate},
		{"candidate_user_2", m.RoleCandidate},
		{"recruiter_user_1", m.RoleRecruiter},
		{"recruiter_user_2", m.RoleRecruiter},
		{"admin_user", m.RoleAdmin},
	}

	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Password: hashedPwd,
			Role:     s.role,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Username {
		case "candidate_user_1":
			TestUserCandidate1 = u
		case "candidate_user_2":
			TestUserCandidate2 = u
		case "recruiter_user_1":
			TestUserRecruiter1 = u
		case "recruiter_user_2":
			TestUserRecruiter2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	exp3to5, exp1to3 := "3-5", "1-3"
	bsc := "B.Sc. Computer Science"
	resumeURL := "https://storage.googleapis.com/test-bucket/resumes/alice.txt"
	resumeName := "alice.txt"

	candidates := []m.CandidateUser{
		{
			UserID:     TestUserCandidate1.ID,
			FirstName:  "Alice",
			LastName:   "Nguyen",
			Skills:     pq.StringArray{"Go", "PostgreSQL", "Docker"},
			Experience: &exp3to5,
			Education:  &bsc,
			ResumeURL:  &resumeURL,
			ResumeName: &resumeName,
		},
		{
			UserID:     TestUserCandidate2.ID,
			FirstName:  "Bob",
			LastName:   "Somsak",
			Skills:     pq.StringArray{"Python", "Pandas"},
			Experience: &exp1to3,
		},
	}
	if err := db.Create(&candidates).Error; err != nil {
		return err
	}

	recruiters := []m.RecruiterUser{
		{
			UserID:      TestUserRecruiter1.ID,
			CompanyName: "TechNova",
		},
		{
			UserID:      TestUserRecruiter2.ID,
			CompanyName: "DataForge",
		},
	}
	if err := db.Create(&recruiters).Error; err != nil {
		return err
	}

	TestCandidate1 = candidates[0]
	TestCandidate2 = candidates[1]
	TestRecruiter1 = recruiters[0]
	TestRecruiter2 = recruiters[1]

	var jobCount int64
	if err := db.Model(&m.JobPosting{}).Count(&jobCount).Error; err != nil {
		return err
	}
	if jobCount == 0 {
		exp1 := time.Now().AddDate(0, 1, 0)
		exp2 := time.Now().AddDate(0, 2, 0)

		scoredAt := time.Now().Add(-time.Hour)

		jobs := []m.JobPosting{
			{
				RecruiterID: TestRecruiter1.UserID,
				EditableJobInfo: m.EditableJobInfo{
					Title:    "Backend Engineer",
					Company:  "TechNova",
					Desc:     "Build Go services and database layers.",
					Req:      "Go; SQL familiarity",
					Skills:   pq.StringArray{"go", "postgresql"},
					ExpLvl:   "Mid",
					Location: "Bangkok (Hybrid)",
					Type:     "Full-time",
					Salary:   "60000 THB",
					Expiring: &exp1,
				},
				Applications: m.ApplicationList{
					{
						ApplicantID: TestUserCandidate1.ID,
						FullName:    "Alice Nguyen",
						Email:       "candidate_user_1",
						Skills:      []string{"Go", "PostgreSQL", "Docker"},
						Experience:  exp3to5,
						ResumeURL:   resumeURL,
						ResumeName:  resumeName,
						Status:      m.StatusApplied,
						AppliedAt:   time.Now().Add(-48 * time.Hour),
						AI: &m.AIScreening{
							Score:          82,
							Confidence:     90,
							Explanation:    "Strong overlap with the required stack.",
							Recommendation: m.RecommendStrongMatch,
							Breakdown: m.ScoreBreakdown{
								SkillsMatch:         45,
								ExperienceRelevance: 24,
								PracticalExposure:   8,
								Education:           5,
							},
							ScoredAt: scoredAt,
						},
					},
					{
						ApplicantID: TestUserCandidate2.ID,
						FullName:    "Bob Somsak",
						Email:       "candidate_user_2",
						Skills:      []string{"Python", "Pandas"},
						Experience:  exp1to3,
						Status:      m.StatusApplied,
						AppliedAt:   time.Now().Add(-24 * time.Hour),
					},
				},
			},
			{
				RecruiterID: TestRecruiter1.UserID,
				EditableJobInfo: m.EditableJobInfo{
					Title:    "Data Analyst",
					Company:  "TechNova",
					Desc:     "Support data cleansing and dashboards.",
					Req:      "SQL; basic statistics",
					Skills:   pq.StringArray{"sql", "python"},
					ExpLvl:   "Junior",
					Location: "Remote",
					Type:     "Full-time",
					Salary:   "40000 THB",
					Expiring: &exp2,
				},
			},
			{
				RecruiterID: TestRecruiter2.UserID,
				EditableJobInfo: m.EditableJobInfo{
					Title:    "Platform Engineer",
					Company:  "DataForge",
					Desc:     "Own the deployment pipeline.",
					Req:      "Kubernetes; CI/CD",
					Skills:   pq.StringArray{"kubernetes", "terraform"},
					ExpLvl:   "Senior",
					Location: "Chiang Mai (On-site)",
					Type:     "Full-time",
					Salary:   "90000 THB",
					Expiring: &exp2,
				},
			},
		}

		if err := db.Create(&jobs).Error; err != nil {
			return err
		}
		TestJobPost1 = jobs[0]
		TestJobPost2 = jobs[1]
		TestJobPost3 = jobs[2]
	}

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"candidate_user_1", "candidate_user_2", "recruiter_user_1", "recruiter_user_2", "admin_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "candidate_user_1":
			TestUserCandidate1 = u
		case "candidate_user_2":
			TestUserCandidate2 = u
		case "recruiter_user_1":
			TestUserRecruiter1 = u
		case "recruiter_user_2":
			TestUserRecruiter2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	if err := db.Where("user_id = ?", TestUserCandidate1.ID).First(&TestCandidate1).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", TestUserCandidate2.ID).First(&TestCandidate2).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", TestUserRecruiter1.ID).First(&TestRecruiter1).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", TestUserRecruiter2.ID).First(&TestRecruiter2).Error; err != nil {
		return err
	}

	var jobs []m.JobPosting
	if err := db.Order("id ASC").Find(&jobs).Error; err != nil {
		return err
	}
	if len(jobs) > 0 {
		TestJobPost1 = jobs[0]
	}
	if len(jobs) > 1 {
		TestJobPost2 = jobs[1]
	}
	if len(jobs) > 2 {
		TestJobPost3 = jobs[2]
	}

	return nil
}
