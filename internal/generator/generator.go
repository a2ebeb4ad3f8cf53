package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// NativeTimeKey wraps a timestamp that the seeder should write as a native
// store timestamp. JSON cannot round-trip a typed timestamp, so native
// values are encoded as {"$time": "<RFC3339>"} in dataset files and
// rehydrated at ingestion time. The two legacy encodings ({_seconds} maps
// and plain ISO strings) are written to the store exactly as generated.
const NativeTimeKey = "$time"

// UserSeed is one user document of a generated dataset.
type UserSeed struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// TransactionSeed is one transaction document owned by a user.
type TransactionSeed struct {
	ID     string         `json:"id"`
	UserID string         `json:"userId"`
	Data   map[string]any `json:"data"`
}

// Dataset contains the generated users and transactions.
type Dataset struct {
	Users        []UserSeed        `json:"users"`
	Transactions []TransactionSeed `json:"transactions"`
}

// Generator produces synthetic dashboard data with the mixed field
// encodings found in production: string amounts, lowercase currency codes,
// and the three timestamp shapes.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = def.NumUsers
	}
	if cfg.MaxTxPerUser <= 0 {
		cfg.MaxTxPerUser = def.MaxTxPerUser
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = def.Currencies
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises users and transactions. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	now := time.Now().UTC()
	users := make([]UserSeed, g.cfg.NumUsers)
	var transactions []TransactionSeed

	for i := 0; i < g.cfg.NumUsers; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		userID := fmt.Sprintf("usr_%06d", i+1)
		first := g.pick(g.nameFragments.first)
		last := g.pick(g.nameFragments.last)
		email := fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), g.pick(g.nameFragments.domains))

		lastActive := now.Add(-time.Duration(g.rand.Intn(20*24)) * time.Hour)
		if g.rand.Float64() < g.cfg.InactiveUserChance {
			lastActive = now.Add(-time.Duration(31+g.rand.Intn(300)) * 24 * time.Hour)
		}
		createdAt := lastActive.Add(-time.Duration(g.rand.Intn(365*24)) * time.Hour)

		users[i] = UserSeed{
			ID: userID,
			Data: map[string]any{
				"displayName": fmt.Sprintf("%s %s", first, last),
				"email":       email,
				"country":     g.pick(g.nameFragments.countries),
				"lastActive":  g.encodeTimestamp(lastActive),
				"createdAt":   g.encodeTimestamp(createdAt),
			},
		}

		// Some users never transacted; their sub-collection must read as
		// empty without failing the scan.
		if g.rand.Float64() < g.cfg.EmptyUserChance {
			continue
		}

		txCount := 1 + g.rand.Intn(g.cfg.MaxTxPerUser)
		for t := 0; t < txCount; t++ {
			txID := fmt.Sprintf("tx_%s_%04d", userID, t+1)
			txTime := now.Add(-time.Duration(g.rand.Intn(90*24*60)) * time.Minute)
			transactions = append(transactions, TransactionSeed{
				ID:     txID,
				UserID: userID,
				Data: map[string]any{
					"amount":      g.encodeAmount(),
					"currency":    g.randomCurrencyCase(g.pick(g.cfg.Currencies)),
					"type":        g.pick([]string{"transfer", "payout", "withdrawal", "deposit", "payment"}),
					"status":      g.pick([]string{"sent", "pending", "completed", "failed"}),
					"createdAt":   g.encodeTimestamp(txTime),
					"description": g.pick(g.nameFragments.notes),
				},
			})
		}
	}

	return Dataset{Users: users, Transactions: transactions}, nil
}

// encodeTimestamp emits one of the three production timestamp shapes.
func (g *Generator) encodeTimestamp(ts time.Time) any {
	if g.rand.Float64() >= g.cfg.LegacyTimestampChance {
		return map[string]any{NativeTimeKey: ts.Format(time.RFC3339)}
	}
	if g.rand.Float64() < 0.5 {
		return map[string]any{"_seconds": ts.Unix()}
	}
	return ts.Format(time.RFC3339)
}

func (g *Generator) encodeAmount() any {
	amount := float64(g.rand.Intn(500000)) / 100
	if g.rand.Float64() < g.cfg.BadAmountChance {
		return "N/A"
	}
	if g.rand.Float64() < g.cfg.StringAmountChance {
		return fmt.Sprintf("%.2f", amount)
	}
	return amount
}

func (g *Generator) randomCurrencyCase(code string) string {
	switch g.rand.Intn(3) {
	case 0:
		return strings.ToLower(code)
	case 1:
		return code[:1] + strings.ToLower(code[1:])
	default:
		return code
	}
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

type nameFragments struct {
	first     []string
	last      []string
	domains   []string
	countries []string
	notes     []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first: []string{
			"Ada", "Chidi", "Amara", "Tunde", "Ngozi", "Kwame", "Zainab", "Emeka",
			"Fatima", "Kofi", "Aisha", "David", "Grace", "Samuel", "Lena", "Marco",
		},
		last: []string{
			"Okafor", "Mensah", "Adeyemi", "Diallo", "Mwangi", "Abubakar", "Eze",
			"Osei", "Ibrahim", "Johnson", "Garcia", "Nakamura", "Kowalski", "Silva",
		},
		domains: []string{"gmail.com", "yahoo.com", "outlook.com", "payvost.com"},
		countries: []string{
			"NG", "GH", "KE", "US", "GB", "IN", "BR", "PH",
		},
		notes: []string{
			"Invoice settlement", "Freelance payout", "Family remittance",
			"Marketplace purchase", "Subscription refund", "Salary disbursement",
		},
	}
}
