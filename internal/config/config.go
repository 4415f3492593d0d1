package config

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
)

// Config is everything a run needs. It is built once and passed explicitly;
// nothing in the workflow reads the environment afterwards.
type Config struct {
	// PrivateKey is the signing credential. It is never logged or serialized.
	PrivateKey     string        `env:"PRIVATE_KEY" json:"-"`
	RPCURL         string        `env:"RPC_URL" envDefault:"https://zksync2-testnet.zksync.dev" json:"rpc_url" validate:"required,url"`
	FactoryAddress string        `env:"FACTORY_ADDRESS" json:"factory_address" validate:"required,eth_addr,nonzero_addr"`
	Confirmations  uint64        `env:"CONFIRMATIONS" envDefault:"1" json:"confirmations"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"2s" json:"poll_interval"`
	GasLimit       uint64        `env:"GAS_LIMIT" json:"gas_limit"`
	RequestFile    string        `env:"REQUEST_FILE" json:"request_file,omitempty"`

	Verify VerifyConfig `json:"verify"`
	Log    LogConfig    `json:"log"`
	Server ServerConfig `json:"server"`

	Entity EntityConfig `envPrefix:"ENTITY_" json:"entity" validate:"-"`
}

type VerifyConfig struct {
	Enabled       bool   `env:"VERIFY" json:"enabled"`
	URL           string `env:"VERIFY_URL" envDefault:"https://zksync2-testnet-explorer.zksync.dev/contract_verification" json:"url" validate:"omitempty,url"`
	SourceFile    string `env:"VERIFY_SOURCE_FILE" json:"source_file,omitempty"`
	EntityType    string `env:"VERIFY_ENTITY_TYPE" envDefault:"CMTAT" json:"entity_type"`
	ZksolcVersion string `env:"ZKSOLC_VERSION" envDefault:"v1.3.8" json:"zksolc_version"`
	SolcVersion   string `env:"SOLC_VERSION" envDefault:"0.8.17" json:"solc_version"`
	Optimization  bool   `env:"VERIFY_OPTIMIZATION" envDefault:"true" json:"optimization"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" json:"level"`
	Format string `env:"LOG_FORMAT" envDefault:"console" json:"format"`
}

type ServerConfig struct {
	Port      int    `env:"PORT" envDefault:"8080" json:"port"`
	JWTSecret string `env:"API_JWT_SECRET" json:"-"`
	Audience  string `env:"API_JWT_AUDIENCE" json:"audience,omitempty"`
}

// LoadOptions controls where Load reads from. A nil Environment means the
// process environment.
type LoadOptions struct {
	Environment map[string]string
	// EnvFile is read with godotenv; values already present win.
	EnvFile string
}

// Load resolves the configuration. The signing credential is checked first,
// so a missing key fails before anything else is looked at.
func Load(opts LoadOptions) (*Config, error) {
	environment := opts.Environment
	if environment == nil {
		environment = env.ToMap(os.Environ())
	}

	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, configError("read env file", err)
		}
		merged := make(map[string]string, len(environment)+len(values))
		for k, v := range values {
			merged[k] = v
		}
		for k, v := range environment {
			merged[k] = v
		}
		environment = merged
	}

	if strings.TrimSpace(environment["PRIVATE_KEY"]) == "" {
		return nil, configError("load", models.ErrMissingCredential)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, configError("parse environment", err)
	}

	if _, err := cfg.SigningKey(); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, configError("validate", err)
	}
	if cfg.PollInterval <= 0 {
		return nil, configError("validate", fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval))
	}
	if cfg.Verify.Enabled {
		if _, err := models.ParseEntityType(cfg.Verify.EntityType); err != nil {
			return nil, configError("validate", err)
		}
	}

	return &cfg, nil
}

// SigningKey parses the private key.
func (c *Config) SigningKey() (*ecdsa.PrivateKey, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(c.PrivateKey), "0x")
	if raw == "" {
		return nil, configError("signing key", models.ErrMissingCredential)
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		// the parse error can echo key material
		return nil, configError("signing key", fmt.Errorf("malformed private key"))
	}
	return key, nil
}

func (c *Config) Factory() common.Address {
	return common.HexToAddress(c.FactoryAddress)
}

// DeploymentRequest resolves the build parameters, from RequestFile when set
// and from the ENTITY_ variables otherwise.
func (c *Config) DeploymentRequest() (models.DeploymentRequest, error) {
	entity := c.Entity
	if c.RequestFile != "" {
		loaded, err := LoadEntityFile(c.RequestFile)
		if err != nil {
			return models.DeploymentRequest{}, err
		}
		entity = loaded
	}
	return entity.Resolve()
}

// LoadEntityFile reads request fields from a JSON file.
func LoadEntityFile(path string) (EntityConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EntityConfig{}, configError("read request file", err)
	}

	var entity EntityConfig
	if err := json.Unmarshal(data, &entity); err != nil {
		return EntityConfig{}, configError("decode request file", err)
	}
	return entity, nil
}

func configError(op string, err error) error {
	return models.NewDeploymentError(models.ErrorKindConfiguration, op, err)
}
