package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"admissions/internal/config"
	"admissions/internal/database"
	"admissions/internal/domain/lead"
	"admissions/internal/logging"
	jwtsvc "admissions/internal/pkg/jwt"
)

var (
	ownerID  string
	count    int
	demoOnly bool
	seedVal  int64
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the admissions database with sample leads",
	Long: `Creates sample leads for a counselor, or with --demo-only enables demo
access for a counselor that has no leads of their own. Prints a bearer token
for the counselor so the API can be tried right away.`,
	RunE: runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&ownerID, "owner", "counselor-1", "counselor id that owns the seeded leads")
	rootCmd.Flags().IntVar(&count, "count", 50, "number of leads to create")
	rootCmd.Flags().BoolVar(&demoOnly, "demo-only", false, "enable demo access instead of creating leads")
	rootCmd.Flags().Int64Var(&seedVal, "seed", 1, "random seed for generated leads")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := lead.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo := lead.NewRepository(db)

	if demoOnly {
		if err := repo.SetDemoAccess(ctx, ownerID, true); err != nil {
			return fmt.Errorf("enable demo access: %w", err)
		}
		logger.Info("demo access enabled", zap.String("owner", ownerID))
	} else {
		created, err := seedLeads(ctx, repo, logger, rand.New(rand.NewSource(seedVal)))
		if err != nil {
			return err
		}
		logger.Info("leads seeded", zap.String("owner", ownerID), zap.Int("created", created))
	}

	token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(ownerID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Authorization: Bearer %s\n", token)
	return nil
}

var (
	firstNames = []string{"Aigerim", "Noah", "Olivia", "Mateo", "Amara", "Yuki", "Lena", "Omar", "Grace", "Ravi"}
	lastNames  = []string{"Nurlanova", "Smith", "Brown", "Silva", "Diallo", "Tanaka", "Fischer", "Haddad", "Kim", "Iyer"}
	cities     = []string{"Almaty", "Boston", "Toronto", "Sao Paulo", "Accra", "Osaka", "Berlin", "Amman", "Seoul", "Pune"}
	programs   = []string{"Computer Science", "Data Science", "Nursing", "Business Administration", "Psychology", "Finance", "Mechanical Engineering"}
	tagPool    = []string{"scholarship", "fall-intake", "spring-intake", "international", "transfer", "mba", "first-generation", "visa"}
	sources    = []lead.Source{lead.SourceWebsite, lead.SourceReferral, lead.SourceSocialMedia, lead.SourceEvent, lead.SourcePartner, lead.SourceAdvertising, lead.SourceOther}
	statuses   = []lead.Status{lead.StatusNew, lead.StatusContacted, lead.StatusQualified, lead.StatusApplicationStarted, lead.StatusApplied, lead.StatusEnrolled, lead.StatusLost}
	priorities = []lead.Priority{lead.PriorityLow, lead.PriorityMedium, lead.PriorityHigh, lead.PriorityUrgent}
	advisors   = []string{"advisor-anna", "advisor-ben", "advisor-chidi"}
)

func seedLeads(ctx context.Context, repo *lead.Repository, logger *zap.Logger, rnd *rand.Rand) (int, error) {
	now := time.Now().UTC().Truncate(time.Second)
	created := 0
	for i := 0; i < count; i++ {
		first := firstNames[rnd.Intn(len(firstNames))]
		last := lastNames[rnd.Intn(len(lastNames))]

		l := &lead.Lead{
			OwnerID:         ownerID,
			FirstName:       first,
			LastName:        last,
			Email:           fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			Phone:           fmt.Sprintf("+1 555 %03d %04d", rnd.Intn(1000), rnd.Intn(10000)),
			City:            cities[rnd.Intn(len(cities))],
			Source:          sources[rnd.Intn(len(sources))],
			Status:          statuses[rnd.Intn(len(statuses))],
			Priority:        priorities[rnd.Intn(len(priorities))],
			LeadScore:       rnd.Intn(101),
			AIScore:         float64(rnd.Intn(100)) / 100,
			ProgramInterest: pick(rnd, programs, 1+rnd.Intn(2)),
			Tags:            pick(rnd, tagPool, rnd.Intn(3)),
			CreatedAt:       now.Add(-time.Duration(rnd.Intn(90*24)) * time.Hour),
		}
		if rnd.Intn(3) > 0 {
			advisor := advisors[rnd.Intn(len(advisors))]
			at := l.CreatedAt.Add(time.Hour)
			l.AssignedTo = &advisor
			l.AssignedAt = &at
			l.AssignmentMethod = lead.AssignmentRoundRobin
		}

		if err := repo.Create(ctx, l); err != nil {
			if errors.Is(err, lead.ErrEmailExists) {
				logger.Debug("lead already seeded", zap.String("email", l.Email))
				continue
			}
			return created, fmt.Errorf("create lead %s: %w", l.Email, err)
		}
		created++
	}
	return created, nil
}

func pick(rnd *rand.Rand, pool []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range rnd.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}
