package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Policy collects the behavior toggles for the quirks the original
// contract shipped with. Every field defaults to false, which reproduces
// the literal legacy behavior; flipping a field enables the corrected one.
type Policy struct {
	// EnforceEntryLimit caps per-user tickets at MaxEntriesPerUser.
	// Legacy stores the cap but never checks it.
	EnforceEntryLimit bool

	// SellFinalTicket allows selling up to the cap. Legacy uses a strict
	// inequality that bars the last ticket.
	SellFinalTicket bool

	// CloseAfterEnd requires the end time to have passed before an
	// explicit close. Legacy requires the opposite.
	CloseAfterEnd bool

	// ClaimChecksWinner gates claiming on a drawn winner. Legacy inspects
	// the free-track roster instead.
	ClaimChecksWinner bool

	// WithdrawToOperator sends treasury withdrawals to the operator.
	// Legacy sends them to the custody address itself, a no-op.
	WithdrawToOperator bool

	// SingleClaim rejects a second claim outright. Legacy relies on the
	// custody ownership check to fail the second transfer.
	SingleClaim bool
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	HTTPAddr string

	// Custody configuration
	OperatorAddress string // privileged identity, transferable at runtime
	CustodyAddress  string // account that escrows prizes and holds treasury funds
	MembershipAsset string // fungible asset whose holders enter for free

	// Legacy behavior toggles
	Policy Policy

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		HTTPAddr: os.Getenv("HTTP_ADDR"),

		OperatorAddress: os.Getenv("OPERATOR_ADDRESS"),
		CustodyAddress:  os.Getenv("CUSTODY_ADDRESS"),
		MembershipAsset: os.Getenv("MEMBERSHIP_ASSET"),

		Policy: Policy{
			EnforceEntryLimit:  boolEnv("POLICY_ENFORCE_ENTRY_LIMIT"),
			SellFinalTicket:    boolEnv("POLICY_SELL_FINAL_TICKET"),
			CloseAfterEnd:      boolEnv("POLICY_CLOSE_AFTER_END"),
			ClaimChecksWinner:  boolEnv("POLICY_CLAIM_CHECKS_WINNER"),
			WithdrawToOperator: boolEnv("POLICY_WITHDRAW_TO_OPERATOR"),
			SingleClaim:        boolEnv("POLICY_SINGLE_CLAIM"),
		},

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.CustodyAddress == "" {
		config.CustodyAddress = "custody"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.OperatorAddress == "" {
			return nil, fmt.Errorf("OPERATOR_ADDRESS is required")
		}
		if config.MembershipAsset == "" {
			return nil, fmt.Errorf("MEMBERSHIP_ASSET is required")
		}
	}

	return config, nil
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}
