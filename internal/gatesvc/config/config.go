package config

import (
	"os"
	"strconv"

	"github.com/galargov/ravkav-services/internal/gatesvc/card"
)

// Defaults matching the cards already in circulation.
const (
	DefaultBudgetBlock  = 14 // sector 3, block 2
	DefaultEntryCost    = 10
	DefaultFirstBalance = 100
)

type Config struct {
	AuthorizedUID card.UID
	Key           card.Key
	BudgetBlock   uint8
	EntryCost     int32
	FirstBalance  int32
	Device        string // libnfc connection string, empty picks the first reader
}

func Load() (Config, error) {
	c := Config{
		Key:          card.DefaultKey,
		BudgetBlock:  DefaultBudgetBlock,
		EntryCost:    DefaultEntryCost,
		FirstBalance: DefaultFirstBalance,
		Device:       os.Getenv("NFC_DEVICE"),
	}

	uid, err := card.ParseUID(os.Getenv("AUTHORIZED_UID"))
	if err != nil {
		return Config{}, err
	}
	c.AuthorizedUID = uid

	if s := os.Getenv("CARD_KEY"); s != "" {
		key, err := card.ParseKey(s)
		if err != nil {
			return Config{}, err
		}
		c.Key = key
	}

	if s := os.Getenv("BUDGET_BLOCK"); s != "" {
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return Config{}, err
		}
		c.BudgetBlock = uint8(v)
	}

	if s := os.Getenv("ENTRY_COST"); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Config{}, err
		}
		c.EntryCost = int32(v)
	}

	if s := os.Getenv("FIRST_BALANCE"); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Config{}, err
		}
		c.FirstBalance = int32(v)
	}

	return c, nil
}
