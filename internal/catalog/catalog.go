// Package catalog loads and seeds the merchant catalog and demo accounts.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Merchants []MerchantEntry `yaml:"merchants"`
	Users     []UserEntry     `yaml:"users"`
}

type MerchantEntry struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	LogoURL  string `yaml:"logo_url"`
}

type UserEntry struct {
	Username     string             `yaml:"username"`
	Email        string             `yaml:"email"`
	Password     string             `yaml:"password"`
	Cards        []CardEntry        `yaml:"cards"`
	Transactions []TransactionEntry `yaml:"transactions"`
	Favorites    []string           `yaml:"favorites"`
}

type CardEntry struct {
	CardType       string  `yaml:"card_type"`
	LastFour       string  `yaml:"last_four"`
	ExpiryDate     string  `yaml:"expiry_date"`
	BaseRewardRate float64 `yaml:"base_reward_rate"`
	Nickname       string  `yaml:"nickname"`
	Issuer         string  `yaml:"issuer"`
	// Overrides maps merchant name to reward rate.
	Overrides map[string]float64 `yaml:"overrides"`
}

// TransactionEntry refers to its card by last four digits and its merchant by name.
type TransactionEntry struct {
	Card     string  `yaml:"card"`
	Merchant string  `yaml:"merchant"`
	Amount   float64 `yaml:"amount"`
	DaysAgo  int     `yaml:"days_ago"`
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every reference inside the catalog resolves.
func (c *Catalog) Validate() error {
	names := make(map[string]struct{}, len(c.Merchants))
	for _, m := range c.Merchants {
		if m.Name == "" {
			return fmt.Errorf("catalog: merchant without name")
		}
		names[m.Name] = struct{}{}
	}

	for _, u := range c.Users {
		if u.Username == "" {
			return fmt.Errorf("catalog: user without username")
		}
		cards := make(map[string]struct{}, len(u.Cards))
		for _, card := range u.Cards {
			if card.BaseRewardRate < 0 {
				return fmt.Errorf("catalog: card %s has negative base rate", card.LastFour)
			}
			cards[card.LastFour] = struct{}{}
			for merchant, rate := range card.Overrides {
				if _, ok := names[merchant]; !ok {
					return fmt.Errorf("catalog: card %s overrides unknown merchant %q", card.LastFour, merchant)
				}
				if rate < 0 {
					return fmt.Errorf("catalog: card %s has negative rate at %q", card.LastFour, merchant)
				}
			}
		}
		for _, t := range u.Transactions {
			if _, ok := cards[t.Card]; !ok {
				return fmt.Errorf("catalog: %s transaction uses unknown card %q", u.Username, t.Card)
			}
			if _, ok := names[t.Merchant]; !ok {
				return fmt.Errorf("catalog: %s transaction at unknown merchant %q", u.Username, t.Merchant)
			}
		}
		for _, f := range u.Favorites {
			if _, ok := names[f]; !ok {
				return fmt.Errorf("catalog: %s favorites unknown merchant %q", u.Username, f)
			}
		}
	}
	return nil
}
