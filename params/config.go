package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Chain struct {
	RPCURL     string
	Exchange   common.Address // exchange contract address
	StartBlock uint64         // first block of the backfill range
}

type API struct {
	ListenAddr     string
	AllowedOrigins []string
}

type Engine struct {
	// ActivityCap bounds the recent-activity ring.
	ActivityCap int
}

// MarketPair is one configured trading pair, base first.
type MarketPair struct {
	BaseSymbol  string
	BaseToken   common.Address
	QuoteSymbol string
	QuoteToken  common.Address
}

type Config struct {
	Chain   Chain
	API     API
	Engine  Engine
	Markets []MarketPair
	LogFile string
}

func Default() Config {
	return Config{
		Chain: Chain{
			RPCURL: "ws://127.0.0.1:8545",
		},
		API: API{
			ListenAddr:     ":8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Engine: Engine{
			ActivityCap: 100,
		},
		LogFile: "data/dexlens.log",
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	cfg.Chain.RPCURL = getEnv("ETH_RPC_URL", cfg.Chain.RPCURL)
	cfg.API.ListenAddr = getEnv("API_LISTEN_ADDR", cfg.API.ListenAddr)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	if v := os.Getenv("EXCHANGE_ADDRESS"); v != "" {
		if !common.IsHexAddress(v) {
			return cfg, fmt.Errorf("EXCHANGE_ADDRESS: %q is not an address", v)
		}
		cfg.Chain.Exchange = common.HexToAddress(v)
	}

	if v := os.Getenv("START_BLOCK"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("START_BLOCK: %w", err)
		}
		cfg.Chain.StartBlock = n
	}

	if v := os.Getenv("ACTIVITY_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("ACTIVITY_CAP: %q is not a positive integer", v)
		}
		cfg.Engine.ActivityCap = n
	}

	if v := os.Getenv("API_ALLOWED_ORIGINS"); v != "" {
		cfg.API.AllowedOrigins = strings.Split(v, ",")
	}

	if v := os.Getenv("MARKETS"); v != "" {
		markets, err := ParseMarkets(v)
		if err != nil {
			return cfg, err
		}
		cfg.Markets = markets
	}

	return cfg, nil
}

// ParseMarkets parses the MARKETS env format: semicolon-separated pairs of
// "SYMBOL:0xaddr,SYMBOL:0xaddr", base token first.
//
//	MARKETS="DAPP:0xaa..,mETH:0xbb..;DAPP:0xaa..,mDAI:0xcc.."
func ParseMarkets(s string) ([]MarketPair, error) {
	var out []MarketPair
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		legs := strings.Split(pair, ",")
		if len(legs) != 2 {
			return nil, fmt.Errorf("MARKETS: pair %q needs exactly two tokens", pair)
		}
		base, baseAddr, err := parseToken(legs[0])
		if err != nil {
			return nil, err
		}
		quote, quoteAddr, err := parseToken(legs[1])
		if err != nil {
			return nil, err
		}
		out = append(out, MarketPair{
			BaseSymbol:  base,
			BaseToken:   baseAddr,
			QuoteSymbol: quote,
			QuoteToken:  quoteAddr,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("MARKETS: no pairs configured")
	}
	return out, nil
}

func parseToken(s string) (string, common.Address, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", common.Address{}, fmt.Errorf("MARKETS: token %q must be SYMBOL:0xaddress", s)
	}
	if !common.IsHexAddress(parts[1]) {
		return "", common.Address{}, fmt.Errorf("MARKETS: %q is not an address", parts[1])
	}
	return parts[0], common.HexToAddress(parts[1]), nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
